package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/beatspace-ads/beatspace-backend/api/responses"
)

type memoryIdempotencyStore struct {
	values map[string]string
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", goredis.Nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "bs:idempotency:" + scope + ":" + id
}

func offerRequest(key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/offers/request", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := &memoryIdempotencyStore{}
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		responses.WriteSuccess(w, map[string]string{"id": "offer-1"})
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, offerRequest("key-1", `{"asset_id":"a"}`))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, offerRequest("key-1", `{"asset_id":"a"}`))
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls, "the handler runs once per key")
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := &memoryIdempotencyStore{}
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"id": "offer-1"})
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, offerRequest("key-1", `{"asset_id":"a"}`))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, offerRequest("key-1", `{"asset_id":"b"}`))
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestIdempotencyRequiresHeaderOnGuardedRoutes(t *testing.T) {
	handler := Idempotency(&memoryIdempotencyStore{}, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, offerRequest("", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIdempotencyIgnoresUnguardedRoutes(t *testing.T) {
	handler := Idempotency(&memoryIdempotencyStore{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/offers/requests", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
