package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://:secret@localhost:6380/2"})
	assert.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
}

func TestOptionsFromConfigUsesAddressFallback(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{Address: "cache:6379", Password: "pw", DB: 1, PoolSize: 5})
	assert.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)
	assert.Equal(t, 5, opts.PoolSize)
}

func TestKeyBuilders(t *testing.T) {
	c := &Client{}
	assert.Equal(t, "bs:idempotency:offers:abc", c.IdempotencyKey("offers", "abc"))
	assert.Equal(t, "bs:rate_limit:login:ip:1.2.3.4", c.RateLimitKey("login:ip:1.2.3.4"))
	assert.Equal(t, "bs:cache:public_stats", c.CacheKey("public_stats"))
	assert.Equal(t, "bs:session:u1", c.RefreshTokenKey("u1"))
	assert.Equal(t, "bs:session:access:a1", c.AccessSessionKey("a1"))
}
