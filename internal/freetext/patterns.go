package freetext

import (
	"regexp"
	"strconv"
	"strings"
)

type section int

const (
	sectionTitle section = iota
	sectionDescription
	sectionIngredients
	sectionInstructions
	sectionNutrition
	sectionEquipment
)

// headerPattern is one language's spelling of a section header.
type headerPattern struct {
	lang  string
	words string
}

type headerRule struct {
	lang string
	re   *regexp.Regexp
}

var ingredientHeaders = []headerPattern{
	{"he", `מצרכים|מרכיבים|רכיבים|חומרים`},
	{"en", `ingredients?`},
	{"it", `ingredienti`},
	{"de", `zutaten`},
	{"nl", `ingrediënten|ingredienten`},
	{"ru", `ингредиенты|продукты`},
}

var instructionHeaders = []headerPattern{
	{"he", `אופן ההכנה|אופן הכנה|שלבי הכנה|הוראות הכנה|הוראות|הכנה`},
	{"en", `instructions|directions|method|preparation|steps`},
	{"it", `preparazione|procedimento|istruzioni`},
	{"de", `zubereitung|anleitung`},
	{"nl", `bereidingswijze|bereiding|instructies`},
	{"ru", `способ приготовления|приготовление|инструкции`},
}

var nutritionHeaders = []headerPattern{
	{"he", `ערכים תזונתיים|ערך תזונתי|תזונה`},
	{"en", `nutrition(?:al)?(?: facts| information| info| values)?`},
	{"it", `valori nutrizionali`},
	{"de", `nährwerte|nährwertangaben`},
	{"nl", `voedingswaarden?`},
	{"ru", `пищевая ценность|энергетическая ценность`},
}

var equipmentHeaders = []headerPattern{
	{"he", `ציוד|כלים`},
	{"en", `equipment|tools`},
	{"it", `attrezzatura|utensili`},
	{"de", `ausrüstung|utensilien|küchengeräte`},
	{"nl", `benodigdheden|keukengerei`},
	{"ru", `оборудование|инвентарь`},
}

// compileHeaders builds one rule per language. A header is either the bare
// word (markdown "#" and "**" decoration and a trailing colon allowed) or the
// word followed by a short qualifier and a colon ("Ingredients for the sauce:").
func compileHeaders(patterns []headerPattern) []headerRule {
	rules := make([]headerRule, 0, len(patterns))
	for _, p := range patterns {
		expr := `(?i)^(?:#+\s*)?(?:\*\*)?(?:` + p.words + `)(?:\*\*)?\s*:?\s*(?:\*\*)?$` +
			`|^(?:#+\s*)?(?:\*\*)?(?:` + p.words + `)\s+[^:]{1,30}:\s*(?:\*\*)?$`
		rules = append(rules, headerRule{lang: p.lang, re: regexp.MustCompile(expr)})
	}
	return rules
}

var headers = []struct {
	section section
	rules   []headerRule
}{
	{sectionIngredients, compileHeaders(ingredientHeaders)},
	{sectionInstructions, compileHeaders(instructionHeaders)},
	{sectionNutrition, compileHeaders(nutritionHeaders)},
	{sectionEquipment, compileHeaders(equipmentHeaders)},
}

func matchHeader(line string) (section, bool) {
	for _, h := range headers {
		for _, r := range h.rules {
			if r.re.MatchString(line) {
				return h.section, true
			}
		}
	}
	return 0, false
}

var (
	ingredientStart = regexp.MustCompile(`^(?:[\d½¼¾⅓⅔⅛⅜⅝⅞]|[-–—•·*]\s*\S)`)
	stepLine        = regexp.MustCompile(`(?i)^(?:שלב|step|passo|schritt|stap|шаг)\s*\d`)
	numberedLine    = regexp.MustCompile(`^\d+[.)]\s+(.*)$`)
	titleMarkup     = regexp.MustCompile(`^#+\s*|^\*\*|\*\*$`)
)

func looksLikeIngredient(line string) bool {
	return ingredientStart.MatchString(line)
}

// looksLikeProse reports whether line reads as a sentence rather than an
// ingredient entry.
func looksLikeProse(line string) bool {
	if looksLikeIngredient(line) {
		return false
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
		return true
	}
	return len(strings.Fields(line)) > 6
}

// metadata

type metaField int

const (
	metaPrepTime metaField = iota
	metaCookTime
	metaServings
	metaCourse
	metaCuisine
)

var metadataRules = []struct {
	field metaField
	re    *regexp.Regexp
}{
	{metaPrepTime, regexp.MustCompile(`(?i)^(?:prep(?:aration)?\.?\s*time|זמן הכנה|tempo di preparazione|vorbereitungszeit|voorbereidingstijd|bereidingstijd|время подготовки)\s*:?\s*(\d.*)$`)},
	{metaCookTime, regexp.MustCompile(`(?i)^(?:cook(?:ing)?\s*time|bak(?:e|ing)\s*time|זמן בישול|זמן אפייה|tempo di cottura|kochzeit|backzeit|kooktijd|baktijd|время приготовления)\s*:?\s*(\d.*)$`)},
	{metaServings, regexp.MustCompile(`(?i)^(?:servings?|serves|yields?|portions?|מנות|כמות מנות|porzioni|portionen|porties|порции|порций)\s*:?\s*(\d.*)$`)},
	{metaCourse, regexp.MustCompile(`(?i)^(?:course|סוג מנה|portata|gang|gerecht|блюдо)\s*:\s*(.+)$`)},
	{metaCuisine, regexp.MustCompile(`(?i)^(?:cuisine|מטבח|cucina|küche|keuken|кухня)\s*:\s*(.+)$`)},
}

var (
	durationPart = regexp.MustCompile(`(?i)(\d+)\s*(hours?|hrs?|h|שעות|שעה|ore|ora|stunden?|std|uur|час(?:а|ов)?|минут\w*|мин|min\w*|דקות|דק)?`)
	firstNumber  = regexp.MustCompile(`\d+`)
)

// parseMinutes reads durations such as "15", "15 minutes" or "1 hour 30 min".
func parseMinutes(s string) (int, bool) {
	total, found := 0, false
	for _, m := range durationPart.FindAllStringSubmatch(s, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if isHourUnit(m[2]) {
			n *= 60
		}
		total += n
		found = true
	}
	return total, found
}

func isHourUnit(u string) bool {
	switch strings.ToLower(u) {
	case "h", "hr", "hrs", "hour", "hours", "שעה", "שעות", "ore", "ora", "stunde", "stunden", "std", "uur", "час", "часа", "часов":
		return true
	}
	return false
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(firstNumber.FindString(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// nutrition

type nutrient struct {
	key      string
	keyValue *regexp.Regexp
	valueKey *regexp.Regexp
}

func newNutrient(key, words string) nutrient {
	return nutrient{
		key:      key,
		keyValue: regexp.MustCompile(`(?i)^(?:[-–•·*]\s*)?(?:` + words + `)\s*[:：\-–]?\s*(\d.*)$`),
		valueKey: regexp.MustCompile(`(?i)^(?:[-–•·*]\s*)?(\d+(?:[.,]\d+)?\s*(?:kcal|cal|mg|g|גרם|מ"ג|מג)?)\s+(?:` + words + `)$`),
	}
}

// nutrients is ordered so that saturated fat is tried before fat.
var nutrients = []nutrient{
	newNutrient("calories", `calories|kcal|cal|קלוריות|calorie|kalorien|energie|energia|calorieën|калории|калорийность`),
	newNutrient("protein", `proteins?|חלבונים|חלבון|proteine|eiweiß|eiweiss|eiwitten|eiwit|белки|белок`),
	newNutrient("carbs", `carbohydrates?|carbs|פחמימות|carboidrati|kohlenhydrate|koolhydraten|углеводы`),
	newNutrient("saturatedFat", `saturated\s+fat|שומן רווי|grassi saturi|gesättigte fettsäuren|verzadigd vet|насыщенные жиры`),
	newNutrient("fat", `total\s+fat|fat|שומנים|שומן|grassi|fett|vetten|vet|жиры`),
	newNutrient("fiber", `dietary\s+fib(?:er|re)|fib(?:er|re)|סיבים תזונתיים|סיבים|fibre|ballaststoffe|vezels|клетчатка`),
	newNutrient("sugar", `sugars?|סוכרים|סוכר|zuccheri|zucker|suikers?|сахара?`),
	newNutrient("sodium", `sodium|נתרן|sodio|natrium|натрий`),
}

func matchNutrient(line string) (key, value string, ok bool) {
	for _, n := range nutrients {
		if m := n.keyValue.FindStringSubmatch(line); m != nil {
			return n.key, strings.TrimSpace(m[1]), true
		}
		if m := n.valueKey.FindStringSubmatch(line); m != nil {
			return n.key, strings.TrimSpace(m[1]), true
		}
	}
	return "", "", false
}
