package ingredient

import (
	"math"
	"strconv"
	"strings"
)

type conversion struct {
	to     Unit
	factor float64
}

// toImperial holds the forward factors; toMetric is derived from it.
var toImperial = map[Unit]conversion{
	Gram:       {Ounce, 1 / 28.3495},
	Kilogram:   {Pound, 2.20462},
	Milliliter: {FluidOunce, 1 / 29.5735},
	Liter:      {Cups, 4.22675},
}

var toMetric = func() map[Unit]conversion {
	m := make(map[Unit]conversion, len(toImperial))
	for from, c := range toImperial {
		m[c.to] = conversion{to: from, factor: 1 / c.factor}
	}
	return m
}()

// Convert returns ing expressed in the target system. Ingredients without a
// quantity, already in the target system, or in a unit outside the table are
// returned unchanged.
func Convert(ing Ingredient, target System) Ingredient {
	if ing.Qty == 0 || ing.Unit == "" {
		return ing
	}

	table := toMetric
	if target == Imperial {
		table = toImperial
	}
	c, ok := table[ing.Unit]
	if !ok {
		return ing
	}

	ing.Qty = round2(ing.Qty * c.factor)
	ing.Unit = c.to
	return ing
}

// ConvertAll converts every ingredient into a new slice.
func ConvertAll(list []Ingredient, target System) []Ingredient {
	out := make([]Ingredient, len(list))
	for i, ing := range list {
		out[i] = Convert(ing, target)
	}
	return out
}

// Factor returns the multiplier applied when converting from u, or 0 when u
// has no conversion.
func Factor(u Unit) float64 {
	if c, ok := toImperial[u]; ok {
		return c.factor
	}
	if c, ok := toMetric[u]; ok {
		return c.factor
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatQty renders a quantity for display: integers without decimals,
// everything else rounded to two places. Zero renders as "".
func FormatQty(q float64) string {
	if math.IsNaN(q) || math.IsInf(q, 0) || round2(q) == 0 {
		return ""
	}
	if q == math.Trunc(q) {
		return strconv.FormatFloat(q, 'f', 0, 64)
	}
	return strconv.FormatFloat(round2(q), 'f', -1, 64)
}

// Display renders the ingredient as "qty unit name", omitting the quantity
// when unspecified and the unit when it is pcs.
func (i Ingredient) Display() string {
	parts := make([]string, 0, 3)
	if q := FormatQty(i.Qty); q != "" {
		parts = append(parts, q)
	}
	if i.Unit != "" && i.Unit != Pieces {
		parts = append(parts, string(i.Unit))
	}
	if i.Name != "" {
		parts = append(parts, i.Name)
	}
	return strings.Join(parts, " ")
}
