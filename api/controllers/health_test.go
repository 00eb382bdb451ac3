package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatspace-ads/beatspace-backend/pkg/config"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func healthConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "test"}}
}

func TestHealthLiveReportsEnv(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(healthConfig())(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-BeatSpace-Env"))
}

func TestHealthReadyWhenDependenciesRespond(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := HealthReady(healthConfig(), nil, stubPinger{}, stubPinger{})
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReadyNamesEveryFailingDependency(t *testing.T) {
	rec := httptest.NewRecorder()
	handler := HealthReady(healthConfig(), nil,
		stubPinger{err: errors.New("connection refused")},
		stubPinger{err: errors.New("timeout")},
	)
	handler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "DEPENDENCY_ERROR", envelope.Error.Code)

	details, ok := envelope.Error.Details.(map[string]any)
	require.True(t, ok)
	failed, _ := details["dependencies"].(string)
	assert.Contains(t, failed, "db")
	assert.Contains(t, failed, "redis")
}
