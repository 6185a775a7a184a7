package sig

import (
	"strings"

	"github.com/rxtally/dispense-cli/internal/model"
)

// unitMapping maps one surface spelling of a dosing unit to its canonical
// name. The table is ordered so more specific spellings are declared before
// looser ones, though ResolveUnit matches exact tokens only.
type unitMapping struct {
	surface   string
	canonical string
}

var unitTable = []unitMapping{
	{"tablet", "tablet"},
	{"tablets", "tablet"},
	{"tab", "tablet"},
	{"tabs", "tablet"},
	{"capsule", "capsule"},
	{"capsules", "capsule"},
	{"cap", "capsule"},
	{"caps", "capsule"},
	{"pill", "pill"},
	{"pills", "pill"},
	{"ml", "mL"},
	{"milliliter", "mL"},
	{"milliliters", "mL"},
	{"millilitre", "mL"},
	{"millilitres", "mL"},
	{"cc", "mL"},
	{"mg", "mg"},
	{"milligram", "mg"},
	{"milligrams", "mg"},
	{"mcg", "mcg"},
	{"microgram", "mcg"},
	{"micrograms", "mcg"},
	{"g", "g"},
	{"gram", "g"},
	{"grams", "g"},
	{"unit", "unit"},
	{"units", "unit"},
	{"iu", "unit"},
	{"puff", "actuation"},
	{"puffs", "actuation"},
	{"actuation", "actuation"},
	{"actuations", "actuation"},
	{"inhalation", "actuation"},
	{"inhalations", "actuation"},
	{"spray", "spray"},
	{"sprays", "spray"},
	{"drop", "drop"},
	{"drops", "drop"},
	{"gtt", "drop"},
	{"patch", "patch"},
	{"patches", "patch"},
	{"suppository", "suppository"},
	{"suppositories", "suppository"},
	{"teaspoon", "teaspoon"},
	{"teaspoons", "teaspoon"},
	{"tsp", "teaspoon"},
	{"tablespoon", "tablespoon"},
	{"tablespoons", "tablespoon"},
	{"tbsp", "tablespoon"},
	{"application", "application"},
	{"applications", "application"},
}

// ResolveUnit maps a raw unit token to its canonical name. Matching is
// case-insensitive and ignores trailing periods ("tabs." == "tabs").
func ResolveUnit(token string) (string, bool) {
	token = strings.ToLower(strings.Trim(strings.TrimSpace(token), "."))
	if token == "" {
		return "", false
	}
	for _, m := range unitTable {
		if m.surface == token {
			return m.canonical, true
		}
	}
	return "", false
}

// formForUnit infers the dosage form implied by a canonical unit. Units that
// carry no form signal (mg, drop, spray, ...) map to "other".
func formForUnit(canonical string) model.DosageForm {
	switch canonical {
	case "tablet", "pill":
		return model.DosageFormTablet
	case "capsule":
		return model.DosageFormCapsule
	case "mL", "teaspoon", "tablespoon":
		return model.DosageFormLiquid
	case "unit":
		return model.DosageFormInsulin
	case "actuation":
		return model.DosageFormInhaler
	default:
		return model.DosageFormOther
	}
}
