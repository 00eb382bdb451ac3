package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
)

type samplePayload struct {
	Email string  `json:"email" validate:"required,email"`
	Price float64 `json:"price" validate:"gt=0"`
}

func postJSON(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(postJSON(`{"email":"buyer@example.com","price":1200}`), &payload)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", payload.Email)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(postJSON(`{"email":"a@b.co","price":1,"extra":true}`), &payload)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	var payload samplePayload
	err := DecodeJSONBody(postJSON(`{"email":"not-an-email","price":0}`), &payload)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "price")
}

func TestParsePathUUIDRejectsGarbage(t *testing.T) {
	_, err := ParsePathUUID("not-a-uuid", "offerId")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestParseQueryIntBounds(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500", nil)
	_, err := ParseQueryInt(req, "limit", 25, 1, 100)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	value, err := ParseQueryInt(req, "limit", 25, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 25, value)
}
