package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/beatspace-ads/beatspace-backend/api/responses"
	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

const envHeader = "X-BeatSpace-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the hard dependencies before reporting readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		// Every dependency gets pinged so a readiness failure names them all.
		var errs []error
		var failed []string
		checks := map[string]pinger{"db": database, "redis": cache}
		for name, dep := range checks {
			if dep == nil {
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				failed = append(failed, name)
			}
		}
		if combined := multierr.Combine(errs...); combined != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "dependencies unavailable").
					WithDetails(map[string]any{"dependencies": strings.Join(failed, ",")}))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
