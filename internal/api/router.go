package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig holds the transport-level settings of the router.
type RouterConfig struct {
	AllowOrigins []string
	UploadDir    string
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 1 << 20

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter wires middleware and routes onto a new gin engine.
func NewRouter(h *Handler, cfg RouterConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = h.opts.MaxUploadBytes

	r.Use(requestid.New())
	r.Use(Logger(log))
	r.Use(Recovery(log))
	r.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	r.GET("/health", h.Health)

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	// uploads are bounded by MaxUploadBytes instead
	r.POST("/api/upload", h.Upload)

	api := r.Group("/api", BodySizeLimit(maxBody, log))
	{
		api.GET("/labels", h.ListLabels)
		api.POST("/labels", h.CreateLabel)
		api.DELETE("/labels/:id", h.DeleteLabel)

		api.GET("/recipes", h.ListRecipes)
		api.POST("/recipes", h.CreateRecipe)
		api.POST("/recipes/parse", h.ParseRecipe)
		api.POST("/recipes/freetext", h.FreeTextRecipe)
		api.POST("/recipes/import", h.ImportRecipe)
		api.GET("/recipes/:id", h.GetRecipe)
		api.PUT("/recipes/:id", h.UpdateRecipe)
		api.DELETE("/recipes/:id", h.DeleteRecipe)

		api.POST("/convert", h.Convert)
		api.POST("/translate", h.Translate)
	}

	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = h.opts.UploadDir
	}
	r.Static("/uploads", uploadDir)

	return r
}
