// Package fuzzy scores search tokens against recipe text, ingredient lists
// and labels using exact, substring and edit-distance matching.
package fuzzy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"fooddb/internal/ingredient"
)

// Scores for each match class. Fuzzy scores are the base minus
// DistancePenalty per edit.
const (
	ExactScore       = 100
	SubstringScore   = 80
	FuzzyBase        = 60
	TitleScore       = 90
	DescriptionScore = 70
	TitleWordBase    = 50
	DistancePenalty  = 1
)

const shortTokenRunes = 5

// Result is the outcome of scoring one token against one candidate.
type Result struct {
	Matched bool `json:"matched"`
	Score   int  `json:"score"`
}

func scored(score int) Result {
	if score <= 0 {
		return Result{}
	}
	return Result{Matched: true, Score: score}
}

func best(a, b Result) Result {
	if b.Score > a.Score {
		return b
	}
	return a
}

// Distance is the Levenshtein distance between a and b counted in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Threshold is the largest edit distance accepted for token. Short tokens
// get a stricter limit.
func Threshold(token string) int {
	if utf8.RuneCountInString(token) <= shortTokenRunes {
		return 2
	}
	return 3
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '"'
	})
}

// closest returns the smallest distance between token and candidate or any
// single word of candidate.
func closest(token, candidate string) int {
	d := Distance(token, candidate)
	for _, w := range words(candidate) {
		if wd := Distance(token, w); wd < d {
			d = wd
		}
	}
	return d
}

// Match scores token against candidate: exact 100, substring in either
// direction 80, otherwise 60 minus the edit distance when within Threshold.
func Match(token, candidate string) Result {
	t, c := normalize(token), normalize(candidate)
	if t == "" || c == "" {
		return Result{}
	}
	if t == c {
		return scored(ExactScore)
	}
	if strings.Contains(c, t) || strings.Contains(t, c) {
		return scored(SubstringScore)
	}
	if d := closest(t, c); d <= Threshold(t) {
		return scored(FuzzyBase - d*DistancePenalty)
	}
	return Result{}
}

// MatchLabel returns the better of the token's scores against the Hebrew and
// English label names.
func MatchLabel(token, nameHe, nameEn string) Result {
	return best(Match(token, nameHe), Match(token, nameEn))
}

// MatchIngredientList returns the best score of token against any
// ingredient name in list.
func MatchIngredientList(token string, list []ingredient.Ingredient) Result {
	var r Result
	for _, ing := range list {
		r = best(r, Match(token, ing.Name))
		if r.Score == ExactScore {
			break
		}
	}
	return r
}

// MatchIngredients decodes a stored ingredient array and scores token against
// it. Malformed JSON counts as an empty list.
func MatchIngredients(token, rawJSON string) Result {
	return MatchIngredientList(token, ingredient.DecodeList(rawJSON))
}

// TextFields are the bilingual free-text fields of a recipe.
type TextFields struct {
	TitleHe       string
	TitleEn       string
	DescriptionHe string
	DescriptionEn string
}

// MatchText scores token against titles and descriptions. A substring hit in a
// title scores 90 and in a description 70; failing both, the token is compared
// word by word with the titles and scores 50 minus the distance.
func MatchText(token string, f TextFields) Result {
	t := normalize(token)
	if t == "" {
		return Result{}
	}

	for _, title := range []string{f.TitleHe, f.TitleEn} {
		if title != "" && strings.Contains(normalize(title), t) {
			return scored(TitleScore)
		}
	}
	for _, desc := range []string{f.DescriptionHe, f.DescriptionEn} {
		if desc != "" && strings.Contains(normalize(desc), t) {
			return scored(DescriptionScore)
		}
	}

	limit := Threshold(t)
	var r Result
	for _, title := range []string{f.TitleEn, f.TitleHe} {
		for _, w := range words(normalize(title)) {
			if d := Distance(t, w); d <= limit {
				r = best(r, scored(TitleWordBase-d*DistancePenalty))
			}
		}
	}
	return r
}
