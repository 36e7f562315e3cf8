// Package api wires the HTTP surface: configuration from the environment,
// middleware and routes.
package api

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"budget-impact/internal/api/handlers"
	"budget-impact/internal/api/middleware"
	"budget-impact/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Config is the server configuration, normally read from the environment.
type Config struct {
	Port           string
	Production     bool
	CasesDir       string
	StaticDir      string
	CacheTTL       time.Duration
	MaxTrials      int
	Workers        int
	AllowedOrigins []string
}

// ConfigFromEnv reads API_PORT, API_ENV, CASES_DIR, STATIC_DIR,
// RESULT_CACHE_TTL, PSA_MAX_TRIALS, PSA_WORKERS and CORS_ALLOWED_ORIGINS.
// Malformed values fall back to the defaults with a warning.
func ConfigFromEnv() Config {
	cfg := Config{
		Port:       getenv("API_PORT", "8080"),
		Production: os.Getenv("API_ENV") == "production",
		CasesDir:   data.DefaultCasesDir(),
		StaticDir:  getenv("STATIC_DIR", "./web/dist"),
		CacheTTL:   time.Hour,
		MaxTrials:  50000,
		Workers:    runtime.NumCPU(),
	}
	if v := os.Getenv("RESULT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		} else {
			log.Warn().Str("value", v).Msg("Ignoring invalid RESULT_CACHE_TTL")
		}
	}
	cfg.MaxTrials = getenvInt("PSA_MAX_TRIALS", cfg.MaxTrials)
	cfg.Workers = getenvInt("PSA_WORKERS", cfg.Workers)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring invalid integer setting")
		return def
	}
	return n
}

// NewRouter builds the gin engine. The cache outlives the router; the caller
// closes it.
func NewRouter(cfg Config, cache *data.ResultCache) *gin.Engine {
	router := gin.New()
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	projectionHandler := handlers.NewProjectionHandler(cache, cfg.CasesDir)
	sensitivityHandler := handlers.NewSensitivityHandler(cfg.CasesDir, cfg.MaxTrials, cfg.Workers)
	caseHandler := handlers.NewCaseHandler(cfg.CasesDir)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/models", handlers.ListModels)
		api.GET("/cases", caseHandler.ListCases)
		api.GET("/cases/:id", caseHandler.GetCase)

		api.POST("/projection", projectionHandler.RunProjection)
		api.POST("/projection/compare", projectionHandler.CompareScenarios)
		api.GET("/projection/:id", projectionHandler.GetProjection)
		api.GET("/projection/:id/export", projectionHandler.ExportProjection)

		api.POST("/dsa", sensitivityHandler.RunDSA)
		api.POST("/psa", sensitivityHandler.RunPSA)
	}

	if cfg.StaticDir == "" {
		return router
	}
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		router.Static("/assets", cfg.StaticDir+"/assets")
		router.StaticFile("/favicon.ico", cfg.StaticDir+"/favicon.ico")

		// SPA routing: everything outside /api falls back to index.html.
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(404, gin.H{"error": "Not found"})
				return
			}
			c.File(cfg.StaticDir + "/index.html")
		})
		log.Info().Str("dir", cfg.StaticDir).Msg("Serving static files")
	} else {
		log.Info().Str("dir", cfg.StaticDir).Msg("Static directory not found, skipping static file serving")
	}
	return router
}
