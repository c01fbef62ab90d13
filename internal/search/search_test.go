package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddb/internal/recipe"
)

var testLabels = []recipe.Label{
	{ID: 1, NameHe: "ארוחת בוקר", NameEn: "Breakfast", Emoji: "☀️"},
	{ID: 3, NameHe: "ארוחת ערב", NameEn: "Dinner", Emoji: "🍽️"},
	{ID: 7, NameHe: "איטלקי", NameEn: "Italian", Emoji: "🍝"},
	{ID: 10, NameHe: "אמריקאי", NameEn: "American", Emoji: "🍔"},
	{ID: 11, NameHe: "ים תיכוני", NameEn: "Mediterranean", Emoji: "🫒"},
}

func label(id int64) recipe.Label {
	for _, l := range testLabels {
		if l.ID == id {
			return l
		}
	}
	return recipe.Label{ID: id}
}

func fixtures() []*recipe.Recipe {
	return []*recipe.Recipe{
		{
			ID: 1, TitleHe: "פנקייק אמריקאי", TitleEn: "American Pancakes",
			DescriptionEn: "Fluffy and airy pancakes",
			IngredientsHe: `[{"qty":200,"unit":"g","name":"קמח"},{"qty":2,"unit":"pcs","name":"ביצים"}]`,
			IngredientsEn: `[{"qty":200,"unit":"g","name":"flour"},{"qty":2,"unit":"pcs","name":"eggs"},{"qty":250,"unit":"ml","name":"milk"}]`,
			Labels:        []recipe.Label{label(1), label(10)},
		},
		{
			ID: 2, TitleHe: "פסטה קרבונרה", TitleEn: "Pasta Carbonara",
			DescriptionEn: "Classic pasta with egg sauce",
			IngredientsEn: `[{"qty":400,"unit":"g","name":"spaghetti"},{"qty":3,"unit":"pcs","name":"eggs"},{"qty":100,"unit":"g","name":"parmesan"}]`,
			Labels:        []recipe.Label{label(3), label(7)},
		},
		{
			ID: 3, TitleHe: "חומוס ביתי", TitleEn: "Homemade Hummus",
			IngredientsEn: `[{"qty":400,"unit":"g","name":"cooked chickpeas"},{"qty":3,"unit":"tbsp","name":"tahini"}]`,
			Labels:        []recipe.Label{label(11)},
		},
	}
}

func ids(recipes []*recipe.Recipe) []int64 {
	out := make([]int64, len(recipes))
	for i, r := range recipes {
		out[i] = r.ID
	}
	return out
}

func TestCompile(t *testing.T) {
	t.Run("label name and a free word", func(t *testing.T) {
		q := Compile("Breakfast eggs", testLabels)
		assert.Equal(t, []int64{1}, q.LabelIDs)
		assert.Equal(t, []string{"eggs"}, q.Tokens)
	})

	t.Run("english labels are case-insensitive", func(t *testing.T) {
		q := Compile("quick dinner, ITALIAN", testLabels)
		assert.ElementsMatch(t, []int64{3, 7}, q.LabelIDs)
		assert.Equal(t, []string{"quick"}, q.Tokens)
	})

	t.Run("hebrew multi-word label", func(t *testing.T) {
		q := Compile("ארוחת בוקר עם ביצים", testLabels)
		assert.Equal(t, []int64{1}, q.LabelIDs)
		assert.Equal(t, []string{"עם", "ביצים"}, q.Tokens)
	})

	t.Run("longest name wins", func(t *testing.T) {
		labels := []recipe.Label{
			{ID: 20, NameEn: "Asian"},
			{ID: 21, NameEn: "Asian Fusion"},
		}
		q := Compile("asian fusion noodles", labels)
		assert.Equal(t, []int64{21}, q.LabelIDs)
		assert.Equal(t, []string{"noodles"}, q.Tokens)
	})

	t.Run("a label phrase is consumed once", func(t *testing.T) {
		q := Compile("dinner dinner", testLabels)
		assert.Equal(t, []int64{3}, q.LabelIDs)
		assert.Equal(t, []string{"dinner"}, q.Tokens)
	})

	t.Run("empty input", func(t *testing.T) {
		q := Compile("   ", testLabels)
		assert.Empty(t, q.LabelIDs)
		assert.Empty(t, q.Tokens)
		assert.NotNil(t, q.LabelIDs)
		assert.NotNil(t, q.Tokens)
	})
}

func TestIndexFold(t *testing.T) {
	cases := []struct {
		s, sub     string
		start, end int
	}{
		{"quick DINNER now", "dinner", 6, 12},
		{"Crème BRÛLÉE", "brûlée", 7, 15},
		{"no match here", "dinner", -1, -1},
		{"din", "dinner", -1, -1},
	}
	for _, tc := range cases {
		start, end := indexFold(tc.s, tc.sub)
		assert.Equal(t, tc.start, start, tc.s)
		assert.Equal(t, tc.end, end, tc.s)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"eggs", "milk", "flour"}, Tokenize("eggs, milk،flour  Eggs"))
	assert.Empty(t, Tokenize(" , ،, "))
}

func TestSplitListAndMerge(t *testing.T) {
	assert.Equal(t, []string{"olive oil", "garlic"}, SplitList("olive oil, garlic,,"))
	assert.Equal(t, []string{"eggs", "olive oil"}, Merge([]string{"eggs"}, []string{"Eggs", "olive oil"}))
}

func TestRankWithoutTokensKeepsInputOrder(t *testing.T) {
	candidates := fixtures()
	q := Compile("", testLabels)

	got := NewRanker(DefaultMinAverageScore).RankRecipes(q.Tokens, q.LabelIDs, candidates)
	assert.Equal(t, []int64{1, 2, 3}, ids(got))
}

func TestRankOrdering(t *testing.T) {
	rk := NewRanker(DefaultMinAverageScore)

	t.Run("ties keep input order", func(t *testing.T) {
		got := rk.RankRecipes([]string{"eggs"}, nil, fixtures())
		assert.Equal(t, []int64{1, 2}, ids(got))
	})

	t.Run("all-matched first and zero scores dropped", func(t *testing.T) {
		scored := rk.Rank([]string{"spaghetti", "eggs"}, nil, fixtures())
		require.Len(t, scored, 2)
		assert.Equal(t, int64(2), scored[0].Recipe.ID)
		assert.True(t, scored[0].AllMatched)
		assert.Equal(t, 200, scored[0].TotalScore)
		assert.Equal(t, int64(1), scored[1].Recipe.ID)
		assert.False(t, scored[1].AllMatched)
		assert.Equal(t, []int{0, 100}, scored[1].Scores)
	})

	t.Run("weak full match outranks strong partial match", func(t *testing.T) {
		weak := &recipe.Recipe{ID: 10, IngredientsEn: `[{"name":"mylk"},{"name":"hony"},{"name":"oat"}]`}
		strong := &recipe.Recipe{ID: 11, IngredientsEn: `[{"name":"milk"},{"name":"honey"}]`}

		scored := rk.Rank([]string{"milk", "honey", "oats"}, nil, []*recipe.Recipe{strong, weak})
		require.Len(t, scored, 2)
		assert.Equal(t, int64(10), scored[0].Recipe.ID)
		assert.Equal(t, 198, scored[0].TotalScore)
		assert.Equal(t, int64(11), scored[1].Recipe.ID)
		assert.Equal(t, 200, scored[1].TotalScore)
	})

	t.Run("label filter requires every label", func(t *testing.T) {
		got := rk.RankRecipes([]string{"eggs"}, []int64{3, 7}, fixtures())
		assert.Equal(t, []int64{2}, ids(got))

		got = rk.RankRecipes([]string{"eggs"}, []int64{1, 7}, fixtures())
		assert.Empty(t, got)
	})

	t.Run("misspelled ingredient", func(t *testing.T) {
		scored := rk.Rank([]string{"chikpeas"}, nil, fixtures())
		require.Len(t, scored, 1)
		assert.Equal(t, int64(3), scored[0].Recipe.ID)
		assert.Equal(t, 59, scored[0].TotalScore)
	})

	t.Run("label membership counts as a match", func(t *testing.T) {
		r := &recipe.Recipe{ID: 20, TitleEn: "Risotto", Labels: []recipe.Label{label(7)}}
		scored := rk.Rank([]string{"italain"}, nil, []*recipe.Recipe{r})
		require.Len(t, scored, 1)
		assert.Equal(t, 58, scored[0].TotalScore)
	})

	t.Run("malformed ingredients fall back to text", func(t *testing.T) {
		r := &recipe.Recipe{ID: 30, TitleEn: "Lentil Soup", IngredientsEn: "{broken"}
		scored := rk.Rank([]string{"lentil"}, nil, []*recipe.Recipe{r})
		require.Len(t, scored, 1)
		assert.Equal(t, 90, scored[0].TotalScore)
	})
}

func TestRankAverageFloor(t *testing.T) {
	r := &recipe.Recipe{ID: 1, IngredientsEn: `[{"name":"milk"}]`}
	tokens := []string{"milk", "zzzz"}

	assert.Empty(t, NewRanker(60).Rank(tokens, nil, []*recipe.Recipe{r}))
	assert.Len(t, NewRanker(0).Rank(tokens, nil, []*recipe.Recipe{r}), 1)

	// single-token queries are never floored
	assert.Len(t, NewRanker(200).Rank([]string{"milk"}, nil, []*recipe.Recipe{r}), 1)
}

func TestRankIsDeterministic(t *testing.T) {
	rk := NewRanker(DefaultMinAverageScore)
	tokens := []string{"eggs", "pasta", "flour"}

	first := ids(rk.RankRecipes(tokens, nil, fixtures()))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ids(rk.RankRecipes(tokens, nil, fixtures())))
	}
}
