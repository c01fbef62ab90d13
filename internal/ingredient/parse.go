package ingredient

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Ingredient is a single structured ingredient. Qty 0 means unspecified.
type Ingredient struct {
	Qty  float64 `json:"qty"`
	Unit Unit    `json:"unit"`
	Name string  `json:"name"`
}

type glyph struct {
	r     string
	value float64
}

// glyphs lists the vulgar fractions understood in quantities.
var glyphs = []glyph{
	{"½", 0.5}, {"¼", 0.25}, {"¾", 0.75},
	{"⅓", 0.333}, {"⅔", 0.667},
	{"⅛", 0.125}, {"⅜", 0.375}, {"⅝", 0.625}, {"⅞", 0.875},
}

const glyphClass = `½¼¾⅓⅔⅛⅜⅝⅞`

var (
	bulletPrefix    = regexp.MustCompile(`^[-–—•·*]+\s*`)
	numberingPrefix = regexp.MustCompile(`^\d+[.)]\s+`)

	qtyToken = `(?:\d+(?:[.,]\d+)?(?:/\d+)?[` + glyphClass + `]?|[` + glyphClass + `])`

	// quantity, optional mixed-number fraction, optional range upper bound, rest.
	quantityLine = regexp.MustCompile(`^(` + qtyToken + `(?:\s+(?:\d+/\d+|[` + glyphClass + `]))?)` +
		`(?:\s*[-–]\s*` + qtyToken + `)?\s*(.*)$`)
)

// StripMarker removes a leading bullet, dash or list numbering ("1.", "1)").
func StripMarker(line string) string {
	line = strings.TrimSpace(line)
	line = bulletPrefix.ReplaceAllString(line, "")
	line = numberingPrefix.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// ParseLine turns a free-form ingredient line such as "1 ½ cups sugar" or
// "200 גרם קמח" into an Ingredient. It never fails: a line without a
// recognisable quantity becomes the name with Qty 0 and unit pcs.
func ParseLine(line string) Ingredient {
	line = StripMarker(line)

	m := quantityLine.FindStringSubmatch(line)
	if m == nil {
		return Ingredient{Qty: 0, Unit: DefaultUnit, Name: line}
	}

	qty := ParseFraction(m[1])
	unit, name := splitUnit(strings.TrimSpace(m[2]))
	return Ingredient{Qty: qty, Unit: unit, Name: name}
}

// splitUnit detects a leading one- or two-word unit in rest. The unit must be
// a whole word, so "large eggs" is not read as litres.
func splitUnit(rest string) (Unit, string) {
	words := strings.Fields(rest)
	if len(words) == 0 {
		return DefaultUnit, ""
	}

	if len(words) >= 2 {
		if u, ok := lookupUnit(words[0] + " " + words[1]); ok {
			return u, trimName(words[2:])
		}
	}
	if u, ok := lookupUnit(words[0]); ok {
		return u, trimName(words[1:])
	}
	return DefaultUnit, trimName(words)
}

func trimName(words []string) string {
	if len(words) > 1 && strings.EqualFold(words[0], "of") {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// ParseFraction parses a quantity expression: "½", "1½", "1 ½", "3/4",
// "1 1/2", "0.5" or "0,5". Anything unparseable yields 0.
func ParseFraction(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0
	}

	if parts := strings.Fields(s); len(parts) == 2 {
		return sanitize(ParseFraction(parts[0]) + ParseFraction(parts[1]))
	}

	for _, g := range glyphs {
		if s == g.r {
			return g.value
		}
	}
	for _, g := range glyphs {
		if strings.Contains(s, g.r) {
			whole := strings.TrimSpace(strings.Replace(s, g.r, "", 1))
			if whole == "" {
				return g.value
			}
			w, err := strconv.ParseFloat(whole, 64)
			if err != nil {
				w = 0
			}
			return sanitize(sanitize(w) + g.value)
		}
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(strings.TrimSpace(den), 64)
		if errN == nil && errD == nil && d != 0 {
			return sanitize(n / d)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return sanitize(v)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
