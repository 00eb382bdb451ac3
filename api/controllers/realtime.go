package controllers

import (
	"net/http"
	"strings"

	"github.com/beatspace-ads/beatspace-backend/api/middleware"
	"github.com/beatspace-ads/beatspace-backend/api/responses"
	"github.com/beatspace-ads/beatspace-backend/internal/realtime"
	pkgAuth "github.com/beatspace-ads/beatspace-backend/pkg/auth"
	"github.com/beatspace-ads/beatspace-backend/pkg/auth/session"
	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

// ServeWS authenticates and upgrades a client to the realtime hub. Browsers
// cannot set headers on WebSocket dials, so the access token also rides in
// the token query parameter.
func ServeWS(hub *realtime.Hub, cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r)
		if token == "" {
			token = strings.TrimSpace(r.URL.Query().Get("token"))
		}
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		claims, err := pkgAuth.ParseAccessToken(cfg, token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
			return
		}

		if verifier != nil {
			ok, err := verifier.HasSession(r.Context(), claims.ID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
				return
			}
		}

		if err := hub.ServeWS(w, r, claims.UserID, claims.Role); err != nil && logg != nil {
			logg.Error(r.Context(), "websocket upgrade failed", err)
		}
	}
}
