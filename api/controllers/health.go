package controllers

import (
	"context"
	"net/http"

	"github.com/DaKloudStudios/cruzremodel-backend/api/responses"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/config"
	pkgerrors "github.com/DaKloudStudios/cruzremodel-backend/pkg/errors"
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/logger"
)

const envHeader = "X-CruzRemodel-Env"

// Pinger is a dependency that can report liveness.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and cache. A nil pinger is skipped, so the
// check degrades gracefully when a dependency is deliberately not wired.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
