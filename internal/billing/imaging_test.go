package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchsuite/billingd/internal/domain"
)

var chestXray = domain.RegistryItem{
	ID:       42,
	Name:     "X-Ray Chest",
	Price:    200,
	Type:     "Service",
	Category: "X-RAY",
}

func TestToggleViewPlain(t *testing.T) {
	views := ToggleView(nil, "AP")
	assert.Equal(t, []string{"AP"}, views)

	views = ToggleView(views, "LAT")
	assert.Equal(t, []string{"AP", "LAT"}, views)

	// clicking a selected view deselects it
	views = ToggleView(views, "AP")
	assert.Equal(t, []string{"LAT"}, views)
}

func TestToggleViewCompositeClearsOthers(t *testing.T) {
	views := ToggleView([]string{"AP", "LAT"}, "AP & LAT")
	assert.Equal(t, []string{"AP & LAT"}, views)

	// clicking the active composite clears the selection
	views = ToggleView(views, "AP & LAT")
	assert.Empty(t, views)

	// picking a plain view drops the composite first
	views = ToggleView([]string{"AP, LAT & OBLIQUE"}, "OBLIQUE")
	assert.Equal(t, []string{"OBLIQUE"}, views)
}

func TestStudyLinePlainViews(t *testing.T) {
	line, ok := StudyLine(chestXray, []string{"AP", "LAT"}, 200)
	require.True(t, ok)
	assert.Equal(t, "X-Ray Chest (AP/LAT)", line.Name)
	assert.Equal(t, 2.0, line.Qty)
	assert.Equal(t, 400.0, line.Subtotal)
	// study lines carry a fresh session id, never the catalog id
	assert.Zero(t, line.ItemID)
	assert.NotZero(t, line.LineID)
}

func TestStudyLineCompositeView(t *testing.T) {
	line, ok := StudyLine(chestXray, []string{"AP & LAT"}, 200)
	require.True(t, ok)
	assert.Equal(t, "X-Ray Chest (AP & LAT)", line.Name)
	assert.Equal(t, 2.0, line.Qty)
	assert.Equal(t, 400.0, line.Subtotal)

	line, ok = StudyLine(chestXray, []string{"AP, LAT & OBLIQUE"}, 200)
	require.True(t, ok)
	assert.Equal(t, 3.0, line.Qty)
	assert.Equal(t, 600.0, line.Subtotal)
}

func TestStudyLineNoViews(t *testing.T) {
	_, ok := StudyLine(chestXray, nil, 200)
	assert.False(t, ok)
}

func TestRepeatedStudiesDoNotCollide(t *testing.T) {
	a, _ := StudyLine(chestXray, []string{"AP"}, 200)
	b, _ := StudyLine(chestXray, []string{"AP"}, 200)
	assert.NotEqual(t, a.LineID, b.LineID)
}

func TestStudyLinesWithOffCharge(t *testing.T) {
	lines, ok := StudyLines(chestXray, []string{"AP", "LAT"}, 200, true)
	require.True(t, ok)
	require.Len(t, lines, 2)
	assert.Equal(t, "X-Ray Off-Charge (Late Fee)", lines[1].Name)
	assert.Equal(t, 70.0, lines[1].Subtotal)

	lines, ok = StudyLines(chestXray, []string{"AP"}, 200, false)
	require.True(t, ok)
	assert.Len(t, lines, 1)
}

func TestViewWeight(t *testing.T) {
	assert.Equal(t, 1.0, ViewWeight("AP"))
	assert.Equal(t, 1.0, ViewWeight("OBLIQUE"))
	assert.Equal(t, 2.0, ViewWeight("AP & LAT"))
	assert.Equal(t, 3.0, ViewWeight("AP, LAT & OBLIQUE"))
}
