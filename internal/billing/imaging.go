package billing

import (
	"fmt"
	"strings"

	"github.com/mchsuite/billingd/internal/domain"
)

// ImagingCategory flags items priced in composite-view mode.
const ImagingCategory = "X-RAY"

// StudyViews is the fixed view vocabulary. The last two are composite:
// they denote multiple exposures and are mutually exclusive with every
// other selection.
var StudyViews = []string{"AP", "LAT", "OBLIQUE", "AP & LAT", "AP, LAT & OBLIQUE"}

var compositeWeights = map[string]float64{
	"AP & LAT":          2,
	"AP, LAT & OBLIQUE": 3,
}

const (
	offChargeName  = "X-Ray Off-Charge (Late Fee)"
	offChargePrice = 70
)

// IsImaging reports whether an item is priced by view selection.
func IsImaging(item domain.RegistryItem) bool {
	return item.Category == ImagingCategory
}

// IsCompositeView reports whether a view denotes multiple exposures.
func IsCompositeView(view string) bool {
	_, ok := compositeWeights[view]
	return ok
}

// ViewWeight returns the exposure count a view contributes.
func ViewWeight(view string) float64 {
	if w, ok := compositeWeights[view]; ok {
		return w
	}
	return 1
}

// ToggleView applies one selection click to the current view set:
// picking a composite clears the set to just that entry, picking a
// plain view drops any composite first and then toggles membership.
func ToggleView(selected []string, view string) []string {
	currently := false
	for _, v := range selected {
		if v == view {
			currently = true
			break
		}
	}

	if IsCompositeView(view) {
		if currently {
			return nil
		}
		return []string{view}
	}

	next := make([]string, 0, len(selected)+1)
	for _, v := range selected {
		if IsCompositeView(v) || v == view {
			continue
		}
		next = append(next, v)
	}
	if !currently {
		next = append(next, view)
	}
	return next
}

// StudyLine builds the bill line for an imaging study: unit count is
// the summed view weights, the display name carries the joined view
// labels, and the line gets a fresh session id (no catalog id) so
// repeated studies never collide.
func StudyLine(item domain.RegistryItem, views []string, unitPrice float64) (domain.BillLineItem, bool) {
	if len(views) == 0 {
		return domain.BillLineItem{}, false
	}
	var units float64
	for _, v := range views {
		units += ViewWeight(v)
	}
	return domain.BillLineItem{
		LineID:   NewLineID(),
		Name:     fmt.Sprintf("%s (%s)", item.Name, strings.Join(views, "/")),
		Price:    unitPrice,
		Type:     item.Type,
		Category: item.Category,
		Qty:      units,
		Subtotal: units * unitPrice,
	}, true
}

// OffChargeLine is the flat late-fee surcharge appended alongside a
// study when the off-charge flag is set.
func OffChargeLine() domain.BillLineItem {
	return domain.BillLineItem{
		LineID:   NewLineID(),
		Name:     offChargeName,
		Price:    offChargePrice,
		Type:     "Service",
		Category: ImagingCategory,
		Qty:      1,
		Subtotal: offChargePrice,
	}
}

// StudyLines builds the full set of lines for one study commit: the
// study itself plus the optional off-charge surcharge.
func StudyLines(item domain.RegistryItem, views []string, unitPrice float64, offCharge bool) ([]domain.BillLineItem, bool) {
	study, ok := StudyLine(item, views, unitPrice)
	if !ok {
		return nil, false
	}
	lines := []domain.BillLineItem{study}
	if offCharge {
		lines = append(lines, OffChargeLine())
	}
	return lines, true
}
