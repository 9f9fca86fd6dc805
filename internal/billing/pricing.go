package billing

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/mchsuite/billingd/internal/domain"
)

// Per-field floors for user-entered dosage factors. Values parse
// tolerantly: unparsable input degrades to zero (a zero subtotal,
// never an error) so the point-of-sale flow stays non-blocking, and
// negative input clamps to the floor.
const (
	MinDoseQty  = 0.5
	MinDoseDays = 1
)

var medicineCategories = map[string]struct{}{
	"PHARMACY":                              {},
	"DISCHARGE MEDICINE":                    {},
	"MEDICINE, ORS & ANESTHESIA, KET, SPINAL": {},
}

var medicineTypes = map[string]struct{}{
	"Tablet":    {},
	"Capsule":   {},
	"Injection": {},
	"Syrup":     {},
}

// IsMedicine reports whether an item is priced in dosage mode, by
// category membership or pharmaceutical type.
func IsMedicine(item domain.RegistryItem) bool {
	if _, ok := medicineCategories[item.Category]; ok {
		return true
	}
	_, ok := medicineTypes[item.Type]
	return ok
}

// ServiceQuantity prices a non-medicine item: unit count is the
// user-entered quantity (default 1 when blank), subtotal is count
// times unit price.
func ServiceQuantity(unitPrice float64, qty string) (units, subtotal float64) {
	qty = strings.TrimSpace(qty)
	if qty == "" {
		qty = "1"
	}
	units = clampFactor(cast.ToFloat64(qty), 0)
	return units, units * unitPrice
}

// DosageUnits computes the unit count for a prescription: dose
// quantity times daily frequency times days. Frequency and days are
// whole-number factors.
func DosageUnits(qty, freq, days string) float64 {
	q := clampFactor(cast.ToFloat64(strings.TrimSpace(qty)), MinDoseQty)
	f := math.Trunc(clampFactor(cast.ToFloat64(strings.TrimSpace(freq)), 0))
	d := math.Trunc(clampFactor(cast.ToFloat64(strings.TrimSpace(days)), MinDoseDays))
	return q * f * d
}

// Dosage prices a medicine item. The unit price is independently
// editable at the point of sale and need not equal the catalog price.
func Dosage(unitPrice float64, qty, freq, days string) (units, subtotal float64) {
	units = DosageUnits(qty, freq, days)
	return units, units * unitPrice
}

// clampFactor keeps quantities non-negative: zero stays zero (the
// degraded parse result), negatives clamp to the field floor.
func clampFactor(v, min float64) float64 {
	if v < 0 {
		return min
	}
	return v
}
