package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fooddb/internal/clipper"
	"fooddb/internal/freetext"
	"fooddb/internal/ingest"
	"fooddb/internal/ingredient"
	"fooddb/internal/recipe"
)

func (h *Handler) create(ctx context.Context, c *gin.Context, r *recipe.Recipe) {
	if err := h.Store.CreateRecipe(ctx, r); err != nil {
		h.storeError(c, "failed to create recipe", err)
		return
	}
	h.respondStored(ctx, c, r, http.StatusCreated)
}

// respondStored re-reads r so the response carries its labels.
func (h *Handler) respondStored(ctx context.Context, c *gin.Context, r *recipe.Recipe, status int) {
	stored, err := h.Store.GetRecipe(ctx, r.ID)
	if err != nil || stored == nil {
		if err != nil {
			h.log.Warn("failed to reload recipe", zap.Int64("id", r.ID), zap.Error(err))
		}
		c.JSON(status, r)
		return
	}
	c.JSON(status, stored)
}

type parseRequest struct {
	Text string `json:"text"`
}

// ParseRecipe parses free text into a draft without storing anything.
func (h *Handler) ParseRecipe(c *gin.Context) {
	var req parseRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required")
		return
	}
	c.JSON(http.StatusOK, freetext.Parse(req.Text))
}

type freeTextRequest struct {
	Text     string   `json:"text"`
	Lang     string   `json:"lang"`
	ImageURL string   `json:"image_url"`
	Tried    bool     `json:"tried"`
	Rating   *float64 `json:"rating"`
	LabelIDs []int64  `json:"label_ids"`
}

// FreeTextRecipe parses free text written in lang, fills in the other
// language and stores the result.
func (h *Handler) FreeTextRecipe(c *gin.Context) {
	var req freeTextRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Lang == "" {
		req.Lang = "he"
	}

	draft := freetext.Parse(req.Text)
	if err := draft.Validate(); err != nil {
		badRequest(c, "could not find a title and ingredients in the text")
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	r, err := h.Ingestor.FromDraft(ctx, draft, req.Lang, ingest.Extras{
		ImageURL: req.ImageURL,
		Tried:    req.Tried,
		Rating:   req.Rating,
		LabelIDs: req.LabelIDs,
	})
	switch {
	case errors.Is(err, ingest.ErrUnsupportedLanguage):
		badRequest(c, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		abort(c, http.StatusRequestTimeout, CodeRequestTimeout, "translation timed out")
		return
	case err != nil:
		h.log.Error("failed to ingest draft", zap.Error(err), zap.String("request_id", requestID(c)))
		abort(c, http.StatusInternalServerError, CodeInternalError, "failed to ingest recipe")
		return
	}

	h.create(ctx, c, r)
}

type importRequest struct {
	URL string `json:"url"`
}

// ImportRecipe fetches a web page and returns the parsed draft.
func (h *Handler) ImportRecipe(c *gin.Context) {
	var req importRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	draft, err := h.Clipper.Clip(ctx, req.URL)
	switch {
	case errors.Is(err, clipper.ErrInvalidURL):
		badRequest(c, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		abort(c, http.StatusRequestTimeout, CodeRequestTimeout, "page fetch timed out")
		return
	case err != nil:
		h.log.Warn("failed to import page", zap.String("url", req.URL), zap.Error(err))
		abort(c, http.StatusBadGateway, CodeBadGateway, "failed to import page")
		return
	}
	c.JSON(http.StatusOK, draft)
}

type convertRequest struct {
	Ingredients []ingredient.Ingredient `json:"ingredients"`
	Lines       []string                `json:"lines"`
	Units       string                  `json:"units"`
}

type convertResponse struct {
	Ingredients []ingredient.Ingredient `json:"ingredients"`
	Display     []string                `json:"display"`
}

// Convert converts ingredients, given structured or as raw lines, to the
// requested measurement system.
func (h *Handler) Convert(c *gin.Context) {
	var req convertRequest
	if !bindJSON(c, &req) {
		return
	}
	system, ok := ingredient.ParseSystem(req.Units)
	if !ok {
		badRequest(c, "units must be metric or imperial")
		return
	}

	list := append([]ingredient.Ingredient{}, req.Ingredients...)
	for _, line := range req.Lines {
		if strings.TrimSpace(line) != "" {
			list = append(list, ingredient.ParseLine(line))
		}
	}

	out := convertResponse{
		Ingredients: ingredient.ConvertAll(list, system),
		Display:     []string{},
	}
	for _, ing := range out.Ingredients {
		out.Display = append(out.Display, ing.Display())
	}
	c.JSON(http.StatusOK, out)
}

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Translate proxies a single translation. On failure the original text is
// returned alongside the error.
func (h *Handler) Translate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Text == "" || req.From == "" || req.To == "" {
		badRequest(c, "text, from, to required")
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	out, err := h.Translator.Translate(ctx, req.Text, req.From, req.To)
	if err != nil {
		h.log.Warn("translation failed", zap.String("from", req.From), zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      "translation failed",
			"code":       CodeBadGateway,
			"translated": req.Text,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"translated": out})
}
