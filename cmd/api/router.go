package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"smart-tasks-backend/internal/config"
	"smart-tasks-backend/internal/tasks"
)

func newRouter(cfg *config.Config, h *tasks.TaskHandler, store tasks.Store, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /debug", func(w http.ResponseWriter, r *http.Request) {
		report := struct {
			Database          string `json:"database"`
			Driver            string `json:"driver"`
			GenerationEnabled bool   `json:"generationEnabled"`
			Model             string `json:"model"`
		}{
			Database:          "ok",
			Driver:            cfg.DBDriver,
			GenerationEnabled: cfg.GeminiAPIKey != "",
			Model:             cfg.GeminiModel,
		}
		if err := store.Ping(r.Context()); err != nil {
			logger.Warn("debug: database unreachable", zap.Error(err))
			report.Database = "unreachable"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(report)
	})

	h.Register(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type", "X-Platform", "X-App-Version", "X-Session-Id",
			"Idempotency-Key", "X-Source-Event-Key", "Accept-Language",
		},
		ExposedHeaders: []string{"X-Task-Action"},
	})

	return accessLog(logger, c.Handler(mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
