package domain

// RegistryItem is one billable catalog entry. Rows are owned by the
// registry engine and mutated only through its upsert/delete/replace
// operations.
type RegistryItem struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	Name      string  `gorm:"size:256;not null" json:"name"`
	Price     float64 `gorm:"not null" json:"price"`
	Type      string  `gorm:"size:64" json:"type"`
	Strength  string  `gorm:"size:128" json:"strength"`
	Category  string  `gorm:"size:128;index" json:"category"`
	UpdatedAt int64   `json:"updatedAt"` // unix millis of the last price/record mutation
}

// Category is a catalog section. Deleting a category cascades into its
// items and any terminal buttons mapped to it.
type Category struct {
	Name string `gorm:"primaryKey;size:128" json:"name"`
}

const (
	TerminalOutpatient = "outpatient"
	TerminalInpatient  = "inpatient"
)

// TerminalButton maps a terminal tile to the category it exposes.
type TerminalButton struct {
	ID             string `gorm:"primaryKey;size:64" json:"id"`
	Label          string `gorm:"size:128" json:"label"`
	TargetTerminal string `gorm:"size:16" json:"targetTerminal"`
	MappedCategory string `gorm:"size:128" json:"mappedCategory"`
}
