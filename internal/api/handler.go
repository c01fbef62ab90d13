package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fooddb/internal/freetext"
	"fooddb/internal/ingest"
	"fooddb/internal/recipe"
	"fooddb/internal/search"
)

// RecipeStore defines the persistence operations used by the handlers.
type RecipeStore interface {
	Ping(ctx context.Context) error
	ListLabels(ctx context.Context) ([]recipe.Label, error)
	CreateLabel(ctx context.Context, l *recipe.Label) error
	DeleteLabel(ctx context.Context, id int64) error
	ListRecipes(ctx context.Context, f recipe.Filter) ([]*recipe.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error)
	CreateRecipe(ctx context.Context, r *recipe.Recipe) error
	UpdateRecipe(ctx context.Context, r *recipe.Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
}

// Translator translates a piece of text between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// Ingestor turns a parsed draft into a bilingual recipe.
type Ingestor interface {
	FromDraft(ctx context.Context, d freetext.Draft, lang string, extras ingest.Extras) (*recipe.Recipe, error)
}

// Clipper imports a recipe draft from a web page.
type Clipper interface {
	Clip(ctx context.Context, url string) (freetext.Draft, error)
}

// Options tunes handler behaviour.
type Options struct {
	RequestTimeout  time.Duration
	MinAverageScore float64
	UploadDir       string
	MaxUploadBytes  int64
	MaxImageWidth   uint
}

// Handler handles HTTP requests.
type Handler struct {
	Store      RecipeStore
	Translator Translator
	Ingestor   Ingestor
	Clipper    Clipper

	ranker search.Ranker
	opts   Options
	log    *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store RecipeStore, translator Translator, ingestor Ingestor, clipper Clipper, opts Options, log *zap.Logger) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.MaxImageWidth == 0 {
		opts.MaxImageWidth = 800
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Store:      store,
		Translator: translator,
		Ingestor:   ingestor,
		Clipper:    clipper,
		ranker:     search.NewRanker(opts.MinAverageScore),
		opts:       opts,
		log:        log,
	}
}

func (h *Handler) timeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

// Health reports liveness and database reachability.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	if err := h.Store.Ping(ctx); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListLabels returns every label.
func (h *Handler) ListLabels(c *gin.Context) {
	ctx, cancel := h.timeout(c)
	defer cancel()

	labels, err := h.Store.ListLabels(ctx)
	if err != nil {
		h.storeError(c, "failed to list labels", err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

type labelRequest struct {
	NameHe string `json:"name_he"`
	NameEn string `json:"name_en"`
	Emoji  string `json:"emoji"`
}

// CreateLabel adds a label; both names are required.
func (h *Handler) CreateLabel(c *gin.Context) {
	var req labelRequest
	if !bindJSON(c, &req) {
		return
	}
	l := recipe.Label{
		NameHe: strings.TrimSpace(req.NameHe),
		NameEn: strings.TrimSpace(req.NameEn),
		Emoji:  strings.TrimSpace(req.Emoji),
	}
	if l.NameHe == "" || l.NameEn == "" {
		badRequest(c, "name_he and name_en are required")
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	if err := h.Store.CreateLabel(ctx, &l); err != nil {
		h.storeError(c, "failed to create label", err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

// DeleteLabel removes a label.
func (h *Handler) DeleteLabel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ctx, cancel := h.timeout(c)
	defer cancel()

	if err := h.Store.DeleteLabel(ctx, id); err != nil {
		h.storeError(c, "failed to delete label", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
