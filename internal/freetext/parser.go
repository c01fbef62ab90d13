// Package freetext turns a pasted, unstructured recipe into a structured Draft.
// Parsing is heuristic and never fails; every ambiguous line has a fallback.
package freetext

import (
	"errors"
	"strings"
	"unicode/utf8"

	"fooddb/internal/ingredient"
)

// UntitledRecipe is the title used when neither a title line nor an
// ingredient could be found.
const UntitledRecipe = "Untitled Recipe"

const (
	maxTitleLength      = 100
	longNumberedLineLen = 60
)

var ErrIncompleteDraft = errors.New("title and ingredients are required")

type Equipment struct {
	Qty  int    `json:"qty"`
	Name string `json:"name"`
}

// Draft is the result of parsing free text, prior to persistence.
type Draft struct {
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Ingredients  []ingredient.Ingredient `json:"ingredients"`
	Instructions string                  `json:"instructions"`
	Nutrition    map[string]string       `json:"nutrition"`
	Equipment    []Equipment             `json:"equipment"`
	PrepTime     *int                    `json:"prepTime,omitempty"`
	CookTime     *int                    `json:"cookTime,omitempty"`
	Servings     *int                    `json:"servings,omitempty"`
	Course       string                  `json:"course,omitempty"`
	Cuisine      string                  `json:"cuisine,omitempty"`
}

// Validate reports ErrIncompleteDraft when the draft lacks a title or has no
// ingredients.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" || len(d.Ingredients) == 0 {
		return ErrIncompleteDraft
	}
	return nil
}

type parser struct {
	draft        Draft
	section      section
	titleSet     bool
	instructions []string
}

// Parse segments text into a Draft. It is a pure function and total over its
// input.
func Parse(text string) Draft {
	p := &parser{
		draft: Draft{
			Ingredients: []ingredient.Ingredient{},
			Nutrition:   map[string]string{},
			Equipment:   []Equipment{},
		},
		section: sectionTitle,
	}

	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	ahead := scanAhead(lines)
	for i, line := range lines {
		if line == "" {
			if next := ahead[i].next; next < len(lines) {
				p.blank(lines[next])
			}
			continue
		}
		p.line(line, ahead[i].ingredient)
	}

	return p.finish()
}

// lookahead describes what follows a line: the index of the next non-blank
// line and whether an ingredient entry appears before the next header.
type lookahead struct {
	next       int
	ingredient bool
}

// scanAhead computes the lookahead of every line in one backward pass.
func scanAhead(lines []string) []lookahead {
	out := make([]lookahead, len(lines))
	next, ingredient := len(lines), false
	for i := len(lines) - 1; i >= 0; i-- {
		out[i] = lookahead{next: next, ingredient: ingredient}
		line := lines[i]
		if line == "" {
			continue
		}
		next = i
		switch {
		case isHeader(line):
			ingredient = false
		case isIngredientEntry(line):
			ingredient = true
		}
	}
	return out
}

// blank applies the blank-line lookahead: once ingredients have been
// collected, a blank line followed by something that is neither an ingredient
// nor a header ends the ingredient list.
func (p *parser) blank(next string) {
	if p.section != sectionIngredients || len(p.draft.Ingredients) == 0 {
		return
	}
	if looksLikeIngredient(next) || isHeader(next) || isMetadata(next) {
		return
	}
	p.section = sectionInstructions
}

func (p *parser) line(line string, ingredientAhead bool) {
	if p.metadata(line) {
		return
	}

	if p.section == sectionNutrition {
		if key, value, ok := matchNutrient(line); ok {
			p.draft.Nutrition[key] = value
			return
		}
		p.section = sectionInstructions
	}

	if s, ok := matchHeader(line); ok {
		p.section = s
		return
	}

	if p.section == sectionTitle {
		title := strings.TrimSpace(titleMarkup.ReplaceAllString(line, ""))
		if title != "" && utf8.RuneCountInString(title) < maxTitleLength && !looksLikeIngredient(title) {
			p.draft.Title = title
			p.titleSet = true
			p.section = sectionDescription
			return
		}
		p.section = sectionIngredients
	}

	if p.section == sectionDescription {
		if !looksLikeIngredient(line) {
			p.appendDescription(line)
			return
		}
		p.section = sectionIngredients
	}

	switch p.section {
	case sectionEquipment:
		if name := ingredient.StripMarker(line); name != "" {
			p.draft.Equipment = append(p.draft.Equipment, Equipment{Qty: 1, Name: name})
		}
	case sectionIngredients:
		if isInstructionStep(line, ingredientAhead) {
			p.section = sectionInstructions
			p.instructions = append(p.instructions, line)
			return
		}
		ing := ingredient.ParseLine(line)
		if ing.Name == "" && ing.Qty == 0 {
			return
		}
		p.draft.Ingredients = append(p.draft.Ingredients, ing)
	default:
		p.instructions = append(p.instructions, line)
	}
}

// isInstructionStep decides whether a line met while reading ingredients is
// really the first preparation step. A sentence-like line only counts when no
// ingredient entry follows it in the same section.
func isInstructionStep(line string, ingredientAhead bool) bool {
	if stepLine.MatchString(line) {
		return true
	}
	if m := numberedLine.FindStringSubmatch(line); m != nil {
		rest := m[1]
		if looksLikeIngredient(rest) {
			return false
		}
		if utf8.RuneCountInString(line) > longNumberedLineLen {
			return true
		}
		return !ingredientAhead && looksLikeProse(rest)
	}
	return !ingredientAhead && looksLikeProse(line)
}

// isIngredientEntry is looksLikeIngredient without numbered or "step N"
// preparation lines.
func isIngredientEntry(line string) bool {
	if !looksLikeIngredient(line) || stepLine.MatchString(line) {
		return false
	}
	if m := numberedLine.FindStringSubmatch(line); m != nil {
		return looksLikeIngredient(m[1])
	}
	return true
}

func (p *parser) metadata(line string) bool {
	for _, rule := range metadataRules {
		m := rule.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		switch rule.field {
		case metaPrepTime:
			if n, ok := parseMinutes(value); ok {
				p.draft.PrepTime = &n
				return true
			}
		case metaCookTime:
			if n, ok := parseMinutes(value); ok {
				p.draft.CookTime = &n
				return true
			}
		case metaServings:
			if n, ok := parseCount(value); ok {
				p.draft.Servings = &n
				return true
			}
		case metaCourse:
			p.draft.Course = value
			return true
		case metaCuisine:
			p.draft.Cuisine = value
			return true
		}
	}
	return false
}

func (p *parser) appendDescription(line string) {
	if p.draft.Description == "" {
		p.draft.Description = line
		return
	}
	p.draft.Description += " " + line
}

func (p *parser) finish() Draft {
	p.draft.Instructions = strings.TrimSpace(strings.Join(p.instructions, "\n"))

	if !p.titleSet || p.draft.Title == "" {
		p.draft.Title = UntitledRecipe
		for _, ing := range p.draft.Ingredients {
			if ing.Name != "" {
				p.draft.Title = ing.Name
				break
			}
		}
	}
	return p.draft
}

func isHeader(line string) bool {
	_, ok := matchHeader(line)
	return ok
}

func isMetadata(line string) bool {
	for _, rule := range metadataRules {
		if rule.re.MatchString(line) {
			return true
		}
	}
	return false
}
