package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mchsuite/billingd/internal/domain"
)

func TestIsMedicine(t *testing.T) {
	assert.True(t, IsMedicine(domain.RegistryItem{Category: "PHARMACY"}))
	assert.True(t, IsMedicine(domain.RegistryItem{Category: "DISCHARGE MEDICINE"}))
	assert.True(t, IsMedicine(domain.RegistryItem{Category: "LABORATORY", Type: "Tablet"}))
	assert.True(t, IsMedicine(domain.RegistryItem{Category: "LABORATORY", Type: "Injection"}))
	assert.False(t, IsMedicine(domain.RegistryItem{Category: "LABORATORY", Type: "Service"}))
	assert.False(t, IsMedicine(domain.RegistryItem{Category: "X-RAY"}))
}

func TestDosage(t *testing.T) {
	units, subtotal := Dosage(10, "2", "3", "5")
	assert.Equal(t, 30.0, units)
	assert.Equal(t, 300.0, subtotal)
}

func TestDosageUnparsableInputDegradesToZero(t *testing.T) {
	units, subtotal := Dosage(10, "abc", "3", "5")
	assert.Equal(t, 0.0, units)
	assert.Equal(t, 0.0, subtotal)

	units, _ = Dosage(10, "2", "", "5")
	assert.Equal(t, 0.0, units)
}

func TestDosageNegativeClampsToFloor(t *testing.T) {
	// dose qty floors at 0.5, day count at 1
	units := DosageUnits("-3", "2", "1")
	assert.Equal(t, 1.0, units)

	units = DosageUnits("2", "1", "-4")
	assert.Equal(t, 2.0, units)
}

func TestDosageFractionalFactorsTruncate(t *testing.T) {
	// half a tablet is a valid dose, half a day is not
	units := DosageUnits("0.5", "2.9", "3.5")
	assert.Equal(t, 0.5*2*3, units)
}

func TestServiceQuantity(t *testing.T) {
	units, subtotal := ServiceQuantity(250, "4")
	assert.Equal(t, 4.0, units)
	assert.Equal(t, 1000.0, subtotal)
}

func TestServiceQuantityDefaultsToOne(t *testing.T) {
	units, subtotal := ServiceQuantity(250, "")
	assert.Equal(t, 1.0, units)
	assert.Equal(t, 250.0, subtotal)

	units, _ = ServiceQuantity(250, "   ")
	assert.Equal(t, 1.0, units)
}

func TestServiceQuantityNeverNegative(t *testing.T) {
	units, subtotal := ServiceQuantity(250, "-2")
	assert.Equal(t, 0.0, units)
	assert.Equal(t, 0.0, subtotal)

	units, _ = ServiceQuantity(250, "garbage")
	assert.Equal(t, 0.0, units)
}
