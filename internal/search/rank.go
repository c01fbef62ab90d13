package search

import (
	"sort"

	"fooddb/internal/fuzzy"
	"fooddb/internal/recipe"
)

// DefaultMinAverageScore is the per-token average below which multi-token
// results are dropped.
const DefaultMinAverageScore = 20

// Scored is one ranked candidate.
type Scored struct {
	Recipe     *recipe.Recipe `json:"recipe"`
	TotalScore int            `json:"total_score"`
	AllMatched bool           `json:"all_matched"`
	Scores     []int          `json:"scores"`
}

// Ranker orders candidates by fuzzy relevance. The zero value applies no
// average-score floor.
type Ranker struct {
	MinAverageScore float64
}

func NewRanker(minAverageScore float64) Ranker {
	return Ranker{MinAverageScore: minAverageScore}
}

// Rank scores every candidate carrying all labelIDs against tokens. Recipes
// matching every token come first, each group ordered by descending total and
// otherwise by input order. Candidates scoring nothing are dropped, as are
// multi-token matches whose average score is under the floor. With no tokens
// the label-filtered candidates are returned in input order.
func (rk Ranker) Rank(tokens []string, labelIDs []int64, candidates []*recipe.Recipe) []Scored {
	out := make([]Scored, 0, len(candidates))
	for _, r := range candidates {
		if r == nil || !hasLabels(r, labelIDs) {
			continue
		}
		if len(tokens) == 0 {
			out = append(out, Scored{Recipe: r, AllMatched: true, Scores: []int{}})
			continue
		}

		s := score(tokens, r)
		if s.TotalScore == 0 {
			continue
		}
		if len(tokens) > 1 && rk.MinAverageScore > 0 &&
			float64(s.TotalScore)/float64(len(tokens)) < rk.MinAverageScore {
			continue
		}
		out = append(out, s)
	}

	if len(tokens) == 0 {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AllMatched != out[j].AllMatched {
			return out[i].AllMatched
		}
		return out[i].TotalScore > out[j].TotalScore
	})
	return out
}

// RankRecipes is Rank without the scores.
func (rk Ranker) RankRecipes(tokens []string, labelIDs []int64, candidates []*recipe.Recipe) []*recipe.Recipe {
	scored := rk.Rank(tokens, labelIDs, candidates)
	out := make([]*recipe.Recipe, len(scored))
	for i, s := range scored {
		out[i] = s.Recipe
	}
	return out
}

func hasLabels(r *recipe.Recipe, ids []int64) bool {
	for _, id := range ids {
		if !r.HasLabel(id) {
			return false
		}
	}
	return true
}

func score(tokens []string, r *recipe.Recipe) Scored {
	s := Scored{Recipe: r, AllMatched: true, Scores: make([]int, len(tokens))}
	text := fuzzy.TextFields{
		TitleHe:       r.TitleHe,
		TitleEn:       r.TitleEn,
		DescriptionHe: r.DescriptionHe,
		DescriptionEn: r.DescriptionEn,
	}
	he := r.Ingredients("he")
	en := r.Ingredients("en")

	for i, tok := range tokens {
		best := fuzzy.MatchText(tok, text).Score
		for _, m := range []fuzzy.Result{
			fuzzy.MatchIngredientList(tok, he),
			fuzzy.MatchIngredientList(tok, en),
		} {
			best = max(best, m.Score)
		}
		for _, l := range r.Labels {
			best = max(best, fuzzy.MatchLabel(tok, l.NameHe, l.NameEn).Score)
		}

		s.Scores[i] = best
		s.TotalScore += best
		if best == 0 {
			s.AllMatched = false
		}
	}
	return s
}
