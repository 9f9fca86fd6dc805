package domain

// LineID identifies one line in the active bill. It is a session-only
// identifier and is never confused with a persisted catalog id: imaging
// study lines and surcharge lines carry no catalog id at all.
type LineID int64

// Dosage holds the user-entered prescription factors for medicine
// lines, kept verbatim for invoice display.
type Dosage struct {
	Qty   string `json:"qty"`
	Freq  string `json:"freq"`
	Days  string `json:"days"`
	Route string `json:"route"`
}

// BillLineItem is one entry in the active bill, derived from a catalog
// selection plus a computed quantity and subtotal. Line items never
// persist; the cart is cleared on checkout.
type BillLineItem struct {
	LineID   LineID  `json:"lineId"`
	ItemID   int64   `json:"itemId,omitempty"` // catalog id; zero for synthetic lines
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Type     string  `json:"type"`
	Strength string  `json:"strength,omitempty"`
	Category string  `json:"category"`
	Qty      float64 `json:"qty"`
	Subtotal float64 `json:"subtotal"`
	Dosage   *Dosage `json:"dosage,omitempty"`
}
