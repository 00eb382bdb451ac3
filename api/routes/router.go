package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/beatspace-ads/beatspace-backend/api/controllers"
	"github.com/beatspace-ads/beatspace-backend/api/middleware"
	authsvc "github.com/beatspace-ads/beatspace-backend/internal/auth"
	"github.com/beatspace-ads/beatspace-backend/internal/assets"
	"github.com/beatspace-ads/beatspace-backend/internal/campaigns"
	"github.com/beatspace-ads/beatspace-backend/internal/notifications"
	"github.com/beatspace-ads/beatspace-backend/internal/offers"
	"github.com/beatspace-ads/beatspace-backend/internal/realtime"
	"github.com/beatspace-ads/beatspace-backend/internal/stats"
	"github.com/beatspace-ads/beatspace-backend/internal/users"
	"github.com/beatspace-ads/beatspace-backend/pkg/auth/session"
	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth          authsvc.Service
	Users         users.Service
	Assets        assets.Service
	Offers        offers.Service
	Campaigns     campaigns.Service
	Notifications notifications.Service
	Stats         stats.Service
	Hub           *realtime.Hub
}

// NewRouter assembles the chi route tree.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	// Public surface.
	r.Get("/assets/public", controllers.PublicListAssets(p.Assets, logg))
	r.Get("/stats/public", controllers.PublicStats(p.Stats, logg))
	r.Get("/ws", controllers.ServeWS(p.Hub, cfg.JWT, p.Sessions, logg))

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(p.Auth, cfg.JWT, logg))
	})

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.Idempotency(p.Redis, logg))

		r.Get("/me", controllers.Me(p.Users, logg))
		r.Put("/me", controllers.UpdateMe(p.Users, logg))

		r.Route("/assets", func(r chi.Router) {
			r.Post("/", controllers.CreateAsset(p.Assets, logg))
			r.Put("/{assetId}", controllers.UpdateAsset(p.Assets, logg))
			r.Delete("/{assetId}", controllers.DeleteAsset(p.Assets, logg))
			r.Post("/{assetId}/monitoring", controllers.SubmitMonitoring(p.Assets, logg))
			r.Get("/{assetId}/monitoring", controllers.ListMonitoring(p.Assets, logg))
		})

		r.Route("/offers", func(r chi.Router) {
			r.Get("/requests", controllers.ListMyOffers(p.Offers, logg))
			r.Post("/request", controllers.CreateOfferRequest(p.Offers, logg))
			r.Post("/requests/{offerId}/approve", controllers.ApproveOffer(p.Offers, logg))
			r.Post("/requests/{offerId}/revision", controllers.RequestOfferRevision(p.Offers, logg))
			r.Post("/requests/{offerId}/cancel", controllers.CancelOffer(p.Offers, logg))
			r.Delete("/requests/{offerId}", controllers.DeleteOffer(p.Offers, logg))
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", controllers.ListMyCampaigns(p.Campaigns, logg))
			r.Post("/", controllers.CreateCampaign(p.Campaigns, logg))
			r.Get("/{campaignId}", controllers.GetCampaign(p.Campaigns, logg))
			r.Put("/{campaignId}", controllers.UpdateCampaign(p.Campaigns, logg))
			r.Delete("/{campaignId}", controllers.DeleteCampaign(p.Campaigns, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(p.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(p.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(p.Notifications, logg))
		})

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminListUsers(p.Users, logg))
				r.Get("/{userId}", controllers.AdminGetUser(p.Users, logg))
				r.Put("/{userId}", controllers.AdminUpdateUser(p.Users, logg))
				r.Patch("/{userId}/status", controllers.AdminSetUserStatus(p.Users, logg))
				r.Delete("/{userId}", controllers.AdminDeleteUser(p.Users, logg))
			})

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", controllers.AdminListAssets(p.Assets, logg))
				r.Patch("/{assetId}/status", controllers.AdminSetAssetStatus(p.Assets, logg))
			})

			r.Route("/offer-requests", func(r chi.Router) {
				r.Get("/", controllers.AdminMediationView(p.Offers, logg))
				r.Patch("/{offerId}/status", controllers.AdminSetOfferStatus(p.Offers, logg))
			})

			r.Route("/offers", func(r chi.Router) {
				r.Put("/{offerId}/quote", controllers.AdminSubmitQuote(p.Offers, logg))
				r.Post("/{offerId}/approve", controllers.ApproveOffer(p.Offers, logg))
				r.Post("/{offerId}/reject", controllers.AdminRejectOffer(p.Offers, logg))
			})

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", controllers.AdminListCampaigns(p.Campaigns, logg))
				r.Post("/", controllers.CreateCampaign(p.Campaigns, logg))
				r.Put("/{campaignId}", controllers.UpdateCampaign(p.Campaigns, logg))
				r.Delete("/{campaignId}", controllers.DeleteCampaign(p.Campaigns, logg))
				r.Patch("/{campaignId}/status", controllers.AdminSetCampaignStatus(p.Campaigns, logg))
			})
		})
	})

	// Public asset detail sits after the authenticated /assets group so the
	// more specific routes win inside chi's tree.
	r.Get("/assets/{assetId}", controllers.GetAsset(p.Assets, logg))

	return r
}
