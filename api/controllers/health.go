package controllers

import (
	"net/http"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/responses"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/config"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TrueStyle-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness only when the backing stores answer.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP, redisP db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TrueStyle-Env", cfg.App.Env)

		deps := map[string]string{}
		ready := true

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				deps["postgres"] = "down"
				ready = false
				if logg != nil {
					logg.Error(r.Context(), "readiness: postgres ping failed", err)
				}
			} else {
				deps["postgres"] = "up"
			}
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				deps["redis"] = "down"
				ready = false
				if logg != nil {
					logg.Error(r.Context(), "readiness: redis ping failed", err)
				}
			} else {
				deps["redis"] = "up"
			}
		}

		if !ready {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(deps))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "deps": deps})
	}
}
