package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/mchsuite/billingd/internal/domain"
)

// Cache is a read-mostly projection of the catalog consumed by UI
// collaborators. It is loaded once at startup and repopulated only by
// explicit Reload calls after engine mutations; accessors hand out
// copies, never the internal slices.
type Cache struct {
	mu         sync.RWMutex
	items      []domain.RegistryItem
	categories []string
	buttons    []domain.TerminalButton
	lastSync   time.Time
}

func NewCache(e *Engine) (*Cache, error) {
	c := &Cache{}
	if err := c.Reload(e); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload repopulates the projection from the engine.
func (c *Cache) Reload(e *Engine) error {
	items, err := e.Items()
	if err != nil {
		return err
	}
	categories, err := e.Categories()
	if err != nil {
		return err
	}
	buttons, err := e.Buttons()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.categories = categories
	c.buttons = buttons
	c.lastSync = time.Now()
	c.mu.Unlock()
	return nil
}

func (c *Cache) Items() []domain.RegistryItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.RegistryItem, len(c.items))
	copy(out, c.items)
	return out
}

// ItemsByCategory filters the projection by category and an optional
// case-insensitive name substring.
func (c *Cache) ItemsByCategory(category, nameFilter string) []domain.RegistryItem {
	nameFilter = strings.ToLower(nameFilter)
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.RegistryItem
	for _, item := range c.items {
		if item.Category != category {
			continue
		}
		if nameFilter != "" && !strings.Contains(strings.ToLower(item.Name), nameFilter) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (c *Cache) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// Buttons returns the button layout for one terminal, or every button
// when terminal is empty.
func (c *Cache) Buttons(terminal string) []domain.TerminalButton {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.TerminalButton
	for _, b := range c.buttons {
		if terminal == "" || b.TargetTerminal == terminal {
			out = append(out, b)
		}
	}
	return out
}

// LastSync reports when the projection was last repopulated.
func (c *Cache) LastSync() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSync
}
