package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

type stubCounters struct {
	available int64
	campaigns int64
	buyers    int64
	sellers   int64
	err       error

	computeCalls int
}

func (s *stubCounters) CountByStatus(_ context.Context, _ enums.AssetStatus) (int64, error) {
	s.computeCalls++
	return s.available, s.err
}

func (s *stubCounters) Count(context.Context) (int64, error) {
	return s.campaigns, s.err
}

func (s *stubCounters) CountByRole(_ context.Context, role enums.UserRole) (int64, error) {
	if role == enums.UserRoleBuyer {
		return s.buyers, s.err
	}
	return s.sellers, s.err
}

type stubOfferCounter struct {
	approved int64
	err      error
}

func (s *stubOfferCounter) CountByStatus(_ context.Context, _ enums.OfferStatus) (int64, error) {
	return s.approved, s.err
}

type stubCache struct {
	entries map[string]string
	getErr  error
	setErr  error
	sets    int
}

func (s *stubCache) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	value, ok := s.entries[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (s *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	if s.entries == nil {
		s.entries = map[string]string{}
	}
	s.sets++
	switch v := value.(type) {
	case []byte:
		s.entries[key] = string(v)
	case string:
		s.entries[key] = v
	}
	return nil
}

func (s *stubCache) CacheKey(name string) string {
	return "bs:cache:" + name
}

func fixture(t *testing.T, counters *stubCounters, cache *stubCache) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Assets:    counters,
		Campaigns: counters,
		Offers:    &stubOfferCounter{approved: 7},
		Users:     counters,
		Cache:     cache,
		Config:    config.StatsConfig{RefreshInterval: 30 * time.Second},
	})
	require.NoError(t, err)
	return svc
}

func TestPublicComputesAndCachesOnMiss(t *testing.T) {
	counters := &stubCounters{available: 12, campaigns: 4, buyers: 9, sellers: 3}
	cache := &stubCache{}
	svc := fixture(t, counters, cache)

	snapshot, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), snapshot.AvailableAssets)
	assert.Equal(t, int64(4), snapshot.TotalCampaigns)
	assert.Equal(t, int64(7), snapshot.ApprovedOffers)
	assert.Equal(t, int64(9), snapshot.Buyers)
	assert.Equal(t, int64(3), snapshot.Sellers)
	assert.False(t, snapshot.GeneratedAt.IsZero())
	assert.Equal(t, 1, cache.sets)

	var cached PublicStats
	require.NoError(t, json.Unmarshal([]byte(cache.entries["bs:cache:public_stats"]), &cached))
	assert.Equal(t, int64(12), cached.AvailableAssets)
}

func TestPublicServesCachedSnapshot(t *testing.T) {
	counters := &stubCounters{available: 99}
	cache := &stubCache{entries: map[string]string{
		"bs:cache:public_stats": `{"available_assets":7,"total_campaigns":2,"buyers":5,"sellers":1}`,
	}}
	svc := fixture(t, counters, cache)

	snapshot, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), snapshot.AvailableAssets)
	assert.Zero(t, counters.computeCalls, "a cache hit skips the database")
}

func TestPublicDegradesWhenCacheUnavailable(t *testing.T) {
	counters := &stubCounters{available: 5, campaigns: 1}
	cache := &stubCache{getErr: errors.New("connection refused"), setErr: errors.New("connection refused")}
	svc := fixture(t, counters, cache)

	snapshot, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), snapshot.AvailableAssets)
}

func TestPublicRecomputesOnCorruptCacheEntry(t *testing.T) {
	counters := &stubCounters{available: 8}
	cache := &stubCache{entries: map[string]string{"bs:cache:public_stats": "{not json"}}
	svc := fixture(t, counters, cache)

	snapshot, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), snapshot.AvailableAssets)
	assert.Equal(t, 1, cache.sets, "the refresh repairs the cache entry")
}

func TestRefreshPropagatesCountErrors(t *testing.T) {
	counters := &stubCounters{err: errors.New("db down")}
	svc := fixture(t, counters, &stubCache{})

	_, err := svc.Refresh(context.Background())
	assert.Error(t, err)
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
