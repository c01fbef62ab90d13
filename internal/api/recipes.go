package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fooddb/internal/ingredient"
	"fooddb/internal/recipe"
	"fooddb/internal/search"
)

func parseTried(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	}
	return nil
}

func mergeIDs(a, b []int64) []int64 {
	out := append([]int64(nil), a...)
	for _, id := range b {
		found := false
		for _, have := range out {
			if have == id {
				found = true
				break
			}
		}
		if !found {
			out = append(out, id)
		}
	}
	return out
}

// ListRecipes returns recipes filtered by labels and tried status. With a
// search or ingredients parameter, label names found in the search text
// join the label filter and the remaining words rank the candidates.
func (h *Handler) ListRecipes(c *gin.Context) {
	filter := recipe.Filter{
		LabelIDs: recipe.ParseIDs(c.Query("labels")),
		Tried:    parseTried(c.Query("tried")),
	}
	searchText := strings.TrimSpace(c.Query("search"))
	ingredients := search.SplitList(c.Query("ingredients"))

	ctx, cancel := h.timeout(c)
	defer cancel()

	var tokens []string
	if searchText != "" || len(ingredients) > 0 {
		labels, err := h.Store.ListLabels(ctx)
		if err != nil {
			h.storeError(c, "failed to list labels", err)
			return
		}
		q := search.Compile(searchText, labels)
		filter.LabelIDs = mergeIDs(filter.LabelIDs, q.LabelIDs)
		tokens = search.Merge(q.Tokens, ingredients)
	}

	candidates, err := h.Store.ListRecipes(ctx, filter)
	if err != nil {
		h.storeError(c, "failed to list recipes", err)
		return
	}
	if len(tokens) == 0 {
		c.JSON(http.StatusOK, candidates)
		return
	}

	ranked := h.ranker.RankRecipes(tokens, filter.LabelIDs, candidates)
	h.log.Debug("recipe search",
		zap.Strings("tokens", tokens),
		zap.Int64s("labels", filter.LabelIDs),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(ranked)),
	)
	c.JSON(http.StatusOK, ranked)
}

// GetRecipe returns one recipe. The units parameter converts both
// ingredient lists for display.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var system ingredient.System
	if units := c.Query("units"); units != "" {
		s, ok := ingredient.ParseSystem(units)
		if !ok {
			badRequest(c, "units must be metric or imperial")
			return
		}
		system = s
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	r, err := h.Store.GetRecipe(ctx, id)
	if err != nil {
		h.storeError(c, "failed to get recipe", err)
		return
	}
	if r == nil {
		notFound(c, "recipe not found")
		return
	}

	if system != "" {
		r.IngredientsHe = ingredient.EncodeList(ingredient.ConvertAll(r.Ingredients("he"), system))
		r.IngredientsEn = ingredient.EncodeList(ingredient.ConvertAll(r.Ingredients("en"), system))
	}
	c.JSON(http.StatusOK, r)
}

func hasTitle(r *recipe.Recipe) bool {
	return strings.TrimSpace(r.TitleHe) != "" || strings.TrimSpace(r.TitleEn) != ""
}

// CreateRecipe stores a recipe. At least one title is required.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var r recipe.Recipe
	if !bindJSON(c, &r) {
		return
	}
	if !hasTitle(&r) {
		badRequest(c, "at least one title is required")
		return
	}
	r.ID = 0

	ctx, cancel := h.timeout(c)
	defer cancel()

	h.create(ctx, c, &r)
}

// UpdateRecipe patches a stored recipe: fields missing from the body keep
// their stored values and labels are replaced only when label_ids is sent.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	r, err := h.Store.GetRecipe(ctx, id)
	if err != nil {
		h.storeError(c, "failed to get recipe", err)
		return
	}
	if r == nil {
		notFound(c, "recipe not found")
		return
	}

	if !bindJSON(c, r) {
		return
	}
	r.ID = id
	if !hasTitle(r) {
		badRequest(c, "at least one title is required")
		return
	}

	if err := h.Store.UpdateRecipe(ctx, r); err != nil {
		h.storeError(c, "failed to update recipe", err)
		return
	}
	h.respondStored(ctx, c, r, http.StatusOK)
}

// DeleteRecipe removes a recipe.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	if err := h.Store.DeleteRecipe(ctx, id); err != nil {
		h.storeError(c, "failed to delete recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
