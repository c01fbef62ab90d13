package ingredient

import "strings"

// Unit is a canonical unit code. The set is closed: anything that cannot be
// resolved to one of the constants below becomes Pieces.
type Unit string

const (
	Gram        Unit = "g"
	Kilogram    Unit = "kg"
	Milliliter  Unit = "ml"
	Liter       Unit = "L"
	Teaspoon    Unit = "tsp"
	Tablespoon  Unit = "tbsp"
	Cup         Unit = "cup"
	Ounce       Unit = "oz"
	Pound       Unit = "lbs"
	FluidOunce  Unit = "fl oz"
	Cups        Unit = "cups"
	Pieces      Unit = "pcs"
)

// DefaultUnit is used whenever no unit can be recognised.
const DefaultUnit = Pieces

// System is a measurement system used for display conversion.
type System string

const (
	Metric   System = "metric"
	Imperial System = "imperial"
)

var units = []Unit{Gram, Kilogram, Milliliter, Liter, Teaspoon, Tablespoon, Cup, Ounce, Pound, FluidOunce, Cups, Pieces}

// Units returns every canonical unit code.
func Units() []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}

// Valid reports whether u is one of the canonical codes.
func (u Unit) Valid() bool {
	for _, known := range units {
		if u == known {
			return true
		}
	}
	return false
}

// System reports the measurement system u belongs to. Units outside both
// conversion sets (spoons, cup, pcs) return the empty System.
func (u Unit) System() System {
	switch u {
	case Gram, Kilogram, Milliliter, Liter:
		return Metric
	case Ounce, Pound, FluidOunce, Cups:
		return Imperial
	}
	return ""
}

// ParseSystem resolves a query value to a System, defaulting to Metric.
func ParseSystem(s string) (System, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "":
		return Metric, true
	case "imperial":
		return Imperial, true
	}
	return Metric, false
}

// synonyms maps lowercase unit words to their canonical code.
var synonyms = map[string]Unit{
	"g": Gram, "gr": Gram, "gram": Gram, "grams": Gram, "gramm": Gram, "grammi": Gram,
	"גרם": Gram, "גר": Gram, "גר'": Gram,

	"kg": Kilogram, "kilo": Kilogram, "kilos": Kilogram, "kilogram": Kilogram, "kilograms": Kilogram,
	"קילו": Kilogram, "ק\"ג": Kilogram, "קילוגרם": Kilogram,

	"ml": Milliliter, "milliliter": Milliliter, "milliliters": Milliliter, "millilitre": Milliliter, "millilitres": Milliliter,
	"מ\"ל": Milliliter, "מל": Milliliter,

	"l": Liter, "liter": Liter, "liters": Liter, "litre": Liter, "litres": Liter, "ליטר": Liter,

	"tsp": Teaspoon, "teaspoon": Teaspoon, "teaspoons": Teaspoon, "כפית": Teaspoon, "כפיות": Teaspoon,

	"tbsp": Tablespoon, "tablespoon": Tablespoon, "tablespoons": Tablespoon, "tbs": Tablespoon,
	"כף": Tablespoon, "כפות": Tablespoon,

	"cup": Cup, "cups": Cup, "כוס": Cup, "כוסות": Cup,

	"oz": Ounce, "ounce": Ounce, "ounces": Ounce, "אונקיה": Ounce, "אונקיות": Ounce,

	"lbs": Pound, "lb": Pound, "pound": Pound, "pounds": Pound,

	"fl oz": FluidOunce, "fl. oz": FluidOunce, "floz": FluidOunce, "fluid ounce": FluidOunce, "fluid ounces": FluidOunce,

	"pcs": Pieces, "pc": Pieces, "piece": Pieces, "pieces": Pieces,
	"יחידות": Pieces, "יחידה": Pieces, "יח'": Pieces,
}

// hebrewQuotes folds the typographic gershayim and geresh variants onto the
// ASCII quotes used in the synonym table.
var hebrewQuotes = strings.NewReplacer("״", "\"", "”", "\"", "“", "\"", "׳", "'", "’", "'")

func unitKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = hebrewQuotes.Replace(s)
	if len(s) > 1 {
		s = strings.TrimRight(s, ".,;:")
	}
	return strings.Join(strings.Fields(s), " ")
}

// lookupUnit is the non-defaulting form of NormalizeUnit.
func lookupUnit(s string) (Unit, bool) {
	u, ok := synonyms[unitKey(s)]
	return u, ok
}

// NormalizeUnit maps a free-form unit word to its canonical code. It is total:
// unknown or empty input yields Pieces.
func NormalizeUnit(s string) Unit {
	if u, ok := lookupUnit(s); ok {
		return u
	}
	return DefaultUnit
}

// storedUnit resolves a unit read back from persisted JSON. Canonical codes
// are kept verbatim so that "cups" stays distinct from "cup".
func storedUnit(s string) Unit {
	if u := Unit(strings.TrimSpace(s)); u.Valid() {
		return u
	}
	return NormalizeUnit(s)
}
