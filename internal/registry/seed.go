package registry

import (
	"regexp"
	"strings"

	"github.com/mchsuite/billingd/internal/domain"
)

// SystemCategories is the category list from the hospital bill form
// plus OPD requirements. Seeded verbatim on first start.
var SystemCategories = []string{
	"BLOOD",
	"LABORATORY",
	"LIMB AND BRACE",
	"FOOD",
	"HALO, O2, NO2, ETC.",
	"ORTHOPEDIC, S. ROLL, ETC.",
	"SURGERY, O.R. & DELIVERY",
	"REGISTRATION FEES",
	"PHARMACY",
	"PHYSICAL THERAPY",
	"IV.'S",
	"PLASTER/MILK",
	"PROCEDURES",
	"SEAT & AD. FEE",
	"X-RAY",
	"LOST LAUNDRY",
	"TRAVEL",
	"OTHER",
}

type seedItem struct {
	Name     string
	Price    float64
	Type     string
	Strength string
	Category string
}

// starterItems is the curated price list seeded into an empty registry.
// Ids are assigned sequentially at seed time so overlapping ids between
// department lists can never violate the primary key.
var starterItems = []seedItem{
	// REGISTRATION FEES
	{Name: "Registration Fee New", Price: 200, Type: "Visit", Category: "REGISTRATION FEES"},
	{Name: "Registration Fee", Price: 100, Type: "Visit", Category: "REGISTRATION FEES"},
	{Name: "OPD Medic On-Day", Price: 150, Type: "Visit", Category: "REGISTRATION FEES"},
	{Name: "OPD Medic Night/Off-Day", Price: 220, Type: "Visit", Category: "REGISTRATION FEES"},
	{Name: "Dr. Fee", Price: 350, Type: "Visit", Category: "REGISTRATION FEES"},
	{Name: "Dr. Fee (Night/Off-Day)", Price: 450, Type: "Visit", Category: "REGISTRATION FEES"},
	{Name: "OPD Private Consult", Price: 1860, Type: "Visit", Category: "REGISTRATION FEES"},

	// PHARMACY
	{Name: "Paracetamol", Price: 2, Type: "Tablet", Strength: "500mg", Category: "PHARMACY"},
	{Name: "Amoxicillin", Price: 8, Type: "Capsule", Strength: "500mg", Category: "PHARMACY"},
	{Name: "Omeprazole", Price: 6, Type: "Capsule", Strength: "20mg", Category: "PHARMACY"},
	{Name: "Ceftriaxone", Price: 180, Type: "Injection", Strength: "1g", Category: "PHARMACY"},
	{Name: "Salbutamol Syrup", Price: 55, Type: "Syrup", Strength: "2mg/5ml", Category: "PHARMACY"},
	{Name: "Metronidazole", Price: 3, Type: "Tablet", Strength: "400mg", Category: "PHARMACY"},
	{Name: "Diclofenac", Price: 4, Type: "Tablet", Strength: "50mg", Category: "PHARMACY"},
	{Name: "ORS Sachet", Price: 6, Type: "Service", Category: "PHARMACY"},

	// X-RAY
	{Name: "X-Ray Chest", Price: 200, Type: "Study", Category: "X-RAY"},
	{Name: "X-Ray Hand", Price: 200, Type: "Study", Category: "X-RAY"},
	{Name: "X-Ray Forearm", Price: 220, Type: "Study", Category: "X-RAY"},
	{Name: "X-Ray Femur", Price: 260, Type: "Study", Category: "X-RAY"},
	{Name: "X-Ray Skull", Price: 260, Type: "Study", Category: "X-RAY"},
	{Name: "X-Ray Pelvis", Price: 300, Type: "Study", Category: "X-RAY"},

	// LABORATORY
	{Name: "CBC", Price: 250, Type: "Test", Category: "LABORATORY"},
	{Name: "Blood Glucose (Random)", Price: 80, Type: "Test", Category: "LABORATORY"},
	{Name: "Urine R/E", Price: 120, Type: "Test", Category: "LABORATORY"},
	{Name: "Serum Creatinine", Price: 220, Type: "Test", Category: "LABORATORY"},
	{Name: "Widal Test", Price: 260, Type: "Test", Category: "LABORATORY"},
	{Name: "Blood Grouping & Rh", Price: 150, Type: "Test", Category: "LABORATORY"},

	// IV.'S
	{Name: "Normal Saline (500ml)", Price: 75, Type: "IV Fluid", Category: "IV.'S"},
	{Name: "Dextrose Saline (1000ml)", Price: 95, Type: "IV Fluid", Category: "IV.'S"},
	{Name: "Ringers Lactate (500ml)", Price: 145, Type: "IV Fluid", Category: "IV.'S"},
	{Name: "Dhaka Sol 1000ml", Price: 95, Type: "Service", Category: "IV.'S"},
	{Name: "Hartmann Sol 1000ml", Price: 95, Type: "Service", Category: "IV.'S"},

	// HALO, O2, NO2, ETC.
	{Name: "O2 (2L or .45m / Per Hour)", Price: 130, Type: "Gas", Category: "HALO, O2, NO2, ETC."},
	{Name: "ISO Per Minute", Price: 35, Type: "Gas", Category: "HALO, O2, NO2, ETC."},
	{Name: "N2O (Per 15 Minutes)", Price: 230, Type: "Gas", Category: "HALO, O2, NO2, ETC."},
	{Name: "Halothane (Per Session)", Price: 570, Type: "Gas", Category: "HALO, O2, NO2, ETC."},

	// PHYSICAL THERAPY
	{Name: "Ward patient per treatment/day", Price: 140, Type: "Service", Category: "PHYSICAL THERAPY"},
	{Name: "Non-private outpatient treatment/day", Price: 85, Type: "Service", Category: "PHYSICAL THERAPY"},
	{Name: "TENS/MEDCOLATOR", Price: 85, Type: "Service", Category: "PHYSICAL THERAPY"},
	{Name: "Ultrasound", Price: 120, Type: "Service", Category: "PHYSICAL THERAPY"},
	{Name: "Traction", Price: 85, Type: "Service", Category: "PHYSICAL THERAPY"},
	{Name: "Stroke treatment per visit", Price: 300, Type: "Service", Category: "PHYSICAL THERAPY"},
	{Name: "Hot Pack with Ultrasound", Price: 230, Type: "Service", Category: "PHYSICAL THERAPY"},

	// ORTHOPEDIC, S. ROLL, ETC.
	{Name: "Gypsona Plaster (India) 6\"", Price: 230, Type: "Supply", Category: "ORTHOPEDIC, S. ROLL, ETC."},
	{Name: "Plaster of Paris (China) 6\"", Price: 160, Type: "Supply", Category: "ORTHOPEDIC, S. ROLL, ETC."},
	{Name: "Cast Padding 6\"", Price: 160, Type: "Supply", Category: "ORTHOPEDIC, S. ROLL, ETC."},
	{Name: "Knee splints (Foreign/Local)", Price: 1000, Type: "Support", Category: "ORTHOPEDIC, S. ROLL, ETC."},
	{Name: "Cervical collar", Price: 580, Type: "Support", Category: "ORTHOPEDIC, S. ROLL, ETC."},
	{Name: "Arm sling with straps", Price: 900, Type: "Support", Category: "ORTHOPEDIC, S. ROLL, ETC."},

	// SEAT & AD. FEE
	{Name: "Inpatient Admission Fee Ward", Price: 260, Type: "Per Visit", Category: "SEAT & AD. FEE"},
	{Name: "Bed Fee Ward", Price: 420, Type: "Per Day", Category: "SEAT & AD. FEE"},
	{Name: "Cabin Rent Private 2 (A/C)", Price: 4500, Type: "Per Day", Category: "SEAT & AD. FEE"},
	{Name: "Visitation Fee OPD Doctor Visit", Price: 350, Type: "Per Visit", Category: "SEAT & AD. FEE"},
	{Name: "Visitation Fee Inpatient Ward Daily Visit", Price: 250, Type: "Per Day", Category: "SEAT & AD. FEE"},

	// PROCEDURES
	{Name: "Wound Dressing (Small)", Price: 120, Type: "Service", Category: "PROCEDURES"},
	{Name: "Suturing (Up to 5 Stitches)", Price: 350, Type: "Service", Category: "PROCEDURES"},
	{Name: "Nebulization", Price: 150, Type: "Service", Category: "PROCEDURES"},
	{Name: "Catheterization", Price: 400, Type: "Service", Category: "PROCEDURES"},

	// BLOOD
	{Name: "Whole Blood (Per Bag)", Price: 1200, Type: "Service", Category: "BLOOD"},
	{Name: "Cross Matching", Price: 350, Type: "Test", Category: "BLOOD"},

	// FOOD
	{Name: "Patient Meal (Per Day)", Price: 180, Type: "Per Day", Category: "FOOD"},
	{Name: "Attendant Meal (Per Day)", Price: 150, Type: "Per Day", Category: "FOOD"},
}

type seedButton struct {
	Label    string
	Category string
}

var inpatientButtons = []seedButton{
	{"BLOOD", "BLOOD"},
	{"LABORATORY", "LABORATORY"},
	{"LIMB AND BRACE", "LIMB AND BRACE"},
	{"FOOD", "FOOD"},
	{"HALO, O2, NO2, ETC.", "HALO, O2, NO2, ETC."},
	{"ORTHOPEDIC, S. ROLL, ETC.", "ORTHOPEDIC, S. ROLL, ETC."},
	{"SURGERY, O.R. & DELIVERY", "SURGERY, O.R. & DELIVERY"},
	{"REGISTRATION FEES", "REGISTRATION FEES"},
	{"DISCHARGE MEDICINE", "PHARMACY"},
	{"MEDICINE", "PHARMACY"},
	{"PHYSICAL THERAPY", "PHYSICAL THERAPY"},
	{"IV.'S", "IV.'S"},
	{"PLASTER/MILK", "PLASTER/MILK"},
	{"PROCEDURES", "PROCEDURES"},
	{"SEAT & AD. FEE", "SEAT & AD. FEE"},
	{"X-RAY", "X-RAY"},
	{"LOST LAUNDRY", "LOST LAUNDRY"},
	{"TRAVEL", "TRAVEL"},
	{"OTHER", "OTHER"},
}

var outpatientButtons = []seedButton{
	{"Registration, Medic & Dr. Fee", "REGISTRATION FEES"},
	{"LAB", "LABORATORY"},
	{"X-RAY", "X-RAY"},
	{"MEDICINES", "PHARMACY"},
	{"OR", "SURGERY, O.R. & DELIVERY"},
	{"PROCEDURES", "PROCEDURES"},
	{"ORTHO", "ORTHOPEDIC, S. ROLL, ETC."},
	{"LIMB AND BRACE", "LIMB AND BRACE"},
	{"PT", "PHYSICAL THERAPY"},
	{"O2", "HALO, O2, NO2, ETC."},
	{"OTHERS", "OTHER"},
}

var buttonSlugRe = regexp.MustCompile(`[^a-z]`)

func buttonID(terminal, label string) string {
	prefix := "opd"
	if terminal == domain.TerminalInpatient {
		prefix = "ipd"
	}
	return prefix + "-" + buttonSlugRe.ReplaceAllString(strings.ToLower(label), "")
}

func seedButtons(terminal string, defs []seedButton) []domain.TerminalButton {
	buttons := make([]domain.TerminalButton, 0, len(defs))
	for _, d := range defs {
		buttons = append(buttons, domain.TerminalButton{
			ID:             buttonID(terminal, d.Label),
			Label:          d.Label,
			TargetTerminal: terminal,
			MappedCategory: d.Category,
		})
	}
	return buttons
}
