// Package search compiles free-text search input into label filters and
// tokens, and ranks candidate recipes with the fuzzy matcher.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"fooddb/internal/recipe"
)

// Query is the compiled form of a search string.
type Query struct {
	LabelIDs []int64  `json:"label_ids"`
	Tokens   []string `json:"tokens"`
}

type labelName struct {
	id     int64
	name   string
	hebrew bool
}

// Compile detects label names in raw and splits the rest into tokens. Label
// names are tried longest first; each occurrence found is cut out of the text
// so it does not also become a token. Hebrew names match exactly, others
// case-insensitively.
func Compile(raw string, labels []recipe.Label) Query {
	q := Query{LabelIDs: []int64{}, Tokens: []string{}}
	text := strings.TrimSpace(raw)
	if text == "" {
		return q
	}

	seen := make(map[int64]bool)
	for _, ln := range labelNames(labels) {
		var found bool
		text, found = cut(text, ln)
		if !found {
			continue
		}
		if !seen[ln.id] {
			seen[ln.id] = true
			q.LabelIDs = append(q.LabelIDs, ln.id)
		}
	}

	q.Tokens = Tokenize(text)
	return q
}

func labelNames(labels []recipe.Label) []labelName {
	names := make([]labelName, 0, len(labels)*2)
	for _, l := range labels {
		if n := strings.TrimSpace(l.NameHe); n != "" {
			names = append(names, labelName{id: l.ID, name: n, hebrew: true})
		}
		if n := strings.TrimSpace(l.NameEn); n != "" {
			names = append(names, labelName{id: l.ID, name: n, hebrew: isHebrew(n)})
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return utf8.RuneCountInString(names[i].name) > utf8.RuneCountInString(names[j].name)
	})
	return names
}

// cut removes the first occurrence of the label name from text.
func cut(text string, ln labelName) (string, bool) {
	if ln.hebrew {
		i := strings.Index(text, ln.name)
		if i < 0 {
			return text, false
		}
		return text[:i] + " " + text[i+len(ln.name):], true
	}

	start, end := indexFold(text, ln.name)
	if start < 0 {
		return text, false
	}
	return text[:start] + " " + text[end:], true
}

// indexFold returns the byte span of the first case-insensitive occurrence of
// sub in s, or -1, -1.
func indexFold(s, sub string) (int, int) {
	for i := range s {
		if end, ok := prefixFold(s[i:], sub); ok {
			return i, i + end
		}
	}
	return -1, -1
}

// prefixFold reports whether s starts with sub under simple case folding and
// how many bytes of s the match covers.
func prefixFold(s, sub string) (int, bool) {
	n := 0
	for _, want := range sub {
		got, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 || !foldEqual(got, want) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}

func isHebrew(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hebrew, r) {
			return true
		}
	}
	return false
}

// Tokenize splits s on whitespace, commas and Arabic commas, dropping empty
// and duplicate (case-insensitive) tokens while keeping first-seen order.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ',' || r == '،'
	})
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		key := strings.ToLower(f)
		if seen[key] {
			continue
		}
		seen[key] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// SplitList splits a comma-separated list such as the ingredients query
// parameter, keeping multi-word entries intact.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Merge appends tokens from b not already in a (case-insensitive).
func Merge(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			key := strings.ToLower(t)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, t)
		}
	}
	return out
}
