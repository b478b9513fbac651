package controllers

import (
	"net/http"

	"github.com/alugafacil/alugafacil-backend/api/responses"
	"github.com/alugafacil/alugafacil-backend/pkg/config"
	"github.com/alugafacil/alugafacil-backend/pkg/db"
	"github.com/alugafacil/alugafacil-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AlugaFacil-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, database *db.Client, cache redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AlugaFacil-Env", cfg.App.Env)
		checks := map[string]string{"db": "ok", "redis": "ok"}
		healthy := true
		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				checks["db"] = err.Error()
				healthy = false
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}
		if !healthy {
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, checks)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
