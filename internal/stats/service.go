package stats

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/redis"
)

const cacheEntryName = "public_stats"

// PublicStats is the marketplace snapshot served without authentication.
type PublicStats struct {
	AvailableAssets int64     `json:"available_assets"`
	TotalCampaigns  int64     `json:"total_campaigns"`
	ApprovedOffers  int64     `json:"approved_offers"`
	Buyers          int64     `json:"buyers"`
	Sellers         int64     `json:"sellers"`
	GeneratedAt     time.Time `json:"generated_at"`
}

type assetCounter interface {
	CountByStatus(ctx context.Context, status enums.AssetStatus) (int64, error)
}

type offerCounter interface {
	CountByStatus(ctx context.Context, status enums.OfferStatus) (int64, error)
}

type campaignCounter interface {
	Count(ctx context.Context) (int64, error)
}

type userCounter interface {
	CountByRole(ctx context.Context, role enums.UserRole) (int64, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(name string) string
}

// Service exposes the public marketplace tallies.
type Service interface {
	Public(ctx context.Context) (*PublicStats, error)
	Refresh(ctx context.Context) (*PublicStats, error)
}

type service struct {
	assets    assetCounter
	campaigns campaignCounter
	offers    offerCounter
	users     userCounter
	cache     cacheStore
	cacheTTL  time.Duration
	logg      *logger.Logger
	now       func() time.Time
}

// ServiceParams carries the service dependencies.
type ServiceParams struct {
	Assets    assetCounter
	Campaigns campaignCounter
	Offers    offerCounter
	Users     userCounter
	Cache     cacheStore
	Config    config.StatsConfig
	Logger    *logger.Logger
}

// NewService validates the dependencies and builds the stats service.
func NewService(params ServiceParams) (Service, error) {
	if params.Assets == nil {
		return nil, errors.New("stats service requires an asset counter")
	}
	if params.Campaigns == nil {
		return nil, errors.New("stats service requires a campaign counter")
	}
	if params.Offers == nil {
		return nil, errors.New("stats service requires an offer counter")
	}
	if params.Users == nil {
		return nil, errors.New("stats service requires a user counter")
	}
	ttl := params.Config.CacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &service{
		assets:    params.Assets,
		campaigns: params.Campaigns,
		offers:    params.Offers,
		users:     params.Users,
		cache:     params.Cache,
		cacheTTL:  ttl,
		logg:      params.Logger,
		now:       time.Now,
	}, nil
}

// Public serves the cached snapshot, computing one on a cache miss. A cache
// outage degrades to a direct computation rather than an error.
func (s *service) Public(ctx context.Context) (*PublicStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheEntryName))
		if err == nil {
			var snapshot PublicStats
			if jsonErr := json.Unmarshal([]byte(raw), &snapshot); jsonErr == nil {
				return &snapshot, nil
			}
			if s.logg != nil {
				s.logg.Warn(ctx, "discarding unreadable stats cache entry")
			}
		} else if !redis.IsNil(err) && s.logg != nil {
			s.logg.Error(ctx, "stats cache read failed", err)
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the tallies and rewrites the cache entry.
func (s *service) Refresh(ctx context.Context) (*PublicStats, error) {
	snapshot, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		payload, jsonErr := json.Marshal(snapshot)
		if jsonErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, jsonErr, "encoding stats snapshot")
		}
		if setErr := s.cache.Set(ctx, s.cache.CacheKey(cacheEntryName), payload, s.cacheTTL); setErr != nil && s.logg != nil {
			s.logg.Error(ctx, "stats cache write failed", setErr)
		}
	}
	return snapshot, nil
}

func (s *service) compute(ctx context.Context) (*PublicStats, error) {
	available, err := s.assets.CountByStatus(ctx, enums.AssetStatusAvailable)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting available assets")
	}
	campaigns, err := s.campaigns.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting campaigns")
	}
	approved, err := s.offers.CountByStatus(ctx, enums.OfferStatusApproved)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting approved offers")
	}
	buyers, err := s.users.CountByRole(ctx, enums.UserRoleBuyer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting buyers")
	}
	sellers, err := s.users.CountByRole(ctx, enums.UserRoleSeller)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting sellers")
	}
	return &PublicStats{
		AvailableAssets: available,
		TotalCampaigns:  campaigns,
		ApprovedOffers:  approved,
		Buyers:          buyers,
		Sellers:         sellers,
		GeneratedAt:     s.now().UTC(),
	}, nil
}
