package recipe

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"fooddb/internal/freetext"
	"fooddb/internal/ingredient"
)

// Label is a bilingual tag used for filtering.
type Label struct {
	ID     int64  `json:"id" db:"id"`
	NameHe string `json:"name_he" db:"name_he"`
	NameEn string `json:"name_en" db:"name_en"`
	Emoji  string `json:"emoji" db:"emoji"`
}

type Equipment = freetext.Equipment

// Recipe is a stored recipe with parallel Hebrew and English fields.
// Ingredient lists are kept as JSON text.
type Recipe struct {
	ID             int64             `json:"id" db:"id"`
	TitleHe        string            `json:"title_he" db:"title_he"`
	TitleEn        string            `json:"title_en" db:"title_en"`
	DescriptionHe  string            `json:"description_he" db:"description_he"`
	DescriptionEn  string            `json:"description_en" db:"description_en"`
	IngredientsHe  string            `json:"ingredients_he" db:"ingredients_he"`
	IngredientsEn  string            `json:"ingredients_en" db:"ingredients_en"`
	InstructionsHe string            `json:"instructions_he" db:"instructions_he"`
	InstructionsEn string            `json:"instructions_en" db:"instructions_en"`
	ImageURL       string            `json:"image_url" db:"image_url"`
	Tried          bool              `json:"tried" db:"tried"`
	Rating         *float64          `json:"rating" db:"rating"`
	PrepTime       *int              `json:"prep_time" db:"prep_time"`
	CookTime       *int              `json:"cook_time" db:"cook_time"`
	Servings       *int              `json:"servings" db:"servings"`
	Course         string            `json:"course" db:"course"`
	Cuisine        string            `json:"cuisine" db:"cuisine"`
	Nutrition      map[string]string `json:"nutrition" db:"-"`
	Equipment      []Equipment       `json:"equipment" db:"-"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	Labels         []Label           `json:"labels" db:"-"`
	LabelIDs       []int64           `json:"label_ids,omitempty" db:"-"`
}

// UnmarshalJSON implements the json.Unmarshaler interface for Recipe.
// Ingredient lists may be sent either as JSON text or as an array.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type Alias Recipe // Create an alias to avoid infinite recursion
	aux := &struct {
		IngredientsHe json.RawMessage `json:"ingredients_he"`
		IngredientsEn json.RawMessage `json:"ingredients_en"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	// absent keys leave the current value, so a stored recipe can be patched
	if aux.IngredientsHe != nil {
		r.IngredientsHe = IngredientsText(aux.IngredientsHe)
	}
	if aux.IngredientsEn != nil {
		r.IngredientsEn = IngredientsText(aux.IngredientsEn)
	}
	r.Course = strings.TrimSpace(r.Course)
	r.Cuisine = strings.TrimSpace(r.Cuisine)

	return nil
}

// IngredientsText converts a request value (a JSON string holding an array,
// a plain string with one ingredient per line, or the array itself) into the
// canonical stored text.
func IngredientsText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return ingredient.EncodeList(ingredient.ParseList(s))
	}
	return ingredient.EncodeList(ingredient.DecodeList(string(raw)))
}

// Ingredients decodes the ingredient list for lang ("he" or "en").
func (r *Recipe) Ingredients(lang string) []ingredient.Ingredient {
	if lang == "he" {
		return ingredient.DecodeList(r.IngredientsHe)
	}
	return ingredient.DecodeList(r.IngredientsEn)
}

// HasLabel reports whether the recipe carries the label id.
func (r *Recipe) HasLabel(id int64) bool {
	for _, l := range r.Labels {
		if l.ID == id {
			return true
		}
	}
	return false
}

// normalize applies the storage invariants: a rating only exists for tried
// recipes, and JSON columns are never empty.
func (r *Recipe) normalize() {
	if !r.Tried {
		r.Rating = nil
	}
	if r.IngredientsHe == "" {
		r.IngredientsHe = "[]"
	}
	if r.IngredientsEn == "" {
		r.IngredientsEn = "[]"
	}
	if r.Nutrition == nil {
		r.Nutrition = map[string]string{}
	}
	if r.Equipment == nil {
		r.Equipment = []Equipment{}
	}
}

// Filter narrows ListRecipes. Every label in LabelIDs must be present.
type Filter struct {
	LabelIDs []int64
	Tried    *bool
}
