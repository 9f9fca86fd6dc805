// Package billing holds the per-session cart and the pure pricing
// calculators that turn catalog selections into bill line items.
package billing

import (
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"

	"github.com/mchsuite/billingd/internal/domain"
)

// Group tags a class of fees of which a bill may hold at most one.
type Group string

const (
	GroupRegistration Group = "REGISTRATION"
	GroupMedic        Group = "MEDIC"
	GroupDoctor       Group = "DOCTOR"
)

// exclusivityRules is evaluated in order against the lowercased item
// name; the first matching rule wins. Private consults are explicitly
// exempt even though "consult" items often carry fee wording that
// would match a later rule.
var exclusivityRules = []struct {
	pattern string
	group   Group
	exempt  bool
}{
	{pattern: "private consult", exempt: true},
	{pattern: "registration fee", group: GroupRegistration},
	{pattern: "medic", group: GroupMedic},
	{pattern: "dr. fee", group: GroupDoctor},
	{pattern: "doctor visit", group: GroupDoctor},
}

// ExclusivityGroup classifies an item name. ok is false when the name
// matches no rule or matches an exempt rule.
func ExclusivityGroup(name string) (Group, bool) {
	n := strings.ToLower(name)
	for _, r := range exclusivityRules {
		if strings.Contains(n, r.pattern) {
			if r.exempt {
				return "", false
			}
			return r.group, true
		}
	}
	return "", false
}

var lineNode *snowflake.Node

func init() {
	n, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	lineNode = n
}

// NewLineID issues a fresh session-only line identifier.
func NewLineID() domain.LineID {
	return domain.LineID(lineNode.Generate().Int64())
}

// LineFromItem builds a bill line from a catalog item with a computed
// quantity and subtotal.
func LineFromItem(item domain.RegistryItem, unitPrice, qty, subtotal float64, dosage *domain.Dosage) domain.BillLineItem {
	return domain.BillLineItem{
		LineID:   NewLineID(),
		ItemID:   item.ID,
		Name:     item.Name,
		Price:    unitPrice,
		Type:     item.Type,
		Strength: item.Strength,
		Category: item.Category,
		Qty:      qty,
		Subtotal: subtotal,
		Dosage:   dosage,
	}
}

// Cart is the active bill for one billing session: an order-preserving
// list of line items with exclusivity-group replacement on add.
type Cart struct {
	mu    sync.Mutex
	lines []domain.BillLineItem
}

func NewCart() *Cart {
	return &Cart{}
}

// Add appends the line. When the line belongs to an exclusivity group,
// every existing member of that group is removed first: a new
// registration/medic/doctor fee silently supersedes the old one.
// Duplicates outside exclusivity groups are permitted.
func (c *Cart) Add(line domain.BillLineItem) []domain.BillLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if group, ok := ExclusivityGroup(line.Name); ok {
		kept := c.lines[:0]
		for _, existing := range c.lines {
			if g, exists := ExclusivityGroup(existing.Name); exists && g == group {
				continue
			}
			kept = append(kept, existing)
		}
		c.lines = kept
	}
	c.lines = append(c.lines, line)
	return c.copyLines()
}

// AddAll appends the lines atomically, in order.
func (c *Cart) AddAll(lines ...domain.BillLineItem) []domain.BillLineItem {
	var out []domain.BillLineItem
	for _, line := range lines {
		out = c.Add(line)
	}
	return out
}

// Remove drops the line at index; out-of-range indexes are a no-op.
func (c *Cart) Remove(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// Clear empties the bill.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// Lines returns a copy of the current bill.
func (c *Cart) Lines() []domain.BillLineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLines()
}

// Total sums the line subtotals.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, line := range c.lines {
		total += line.Subtotal
	}
	return total
}

func (c *Cart) copyLines() []domain.BillLineItem {
	out := make([]domain.BillLineItem, len(c.lines))
	copy(out, c.lines)
	return out
}
