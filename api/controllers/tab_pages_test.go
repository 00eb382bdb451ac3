package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatspace-ads/beatspace-backend/internal/campaigns"
	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
	"github.com/beatspace-ads/beatspace-backend/pkg/pagination"
	"github.com/beatspace-ads/beatspace-backend/pkg/types"
)

type stubCampaignsService struct {
	campaigns.Service
	all []models.Campaign
}

func (s stubCampaignsService) ListAll(context.Context) ([]models.Campaign, error) {
	return s.all, nil
}

func seedCampaignList(n int) []models.Campaign {
	rows := make([]models.Campaign, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.Campaign{ID: uuid.New(), Name: fmt.Sprintf("campaign-%02d", i)})
	}
	return rows
}

func decodeTabPage(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	page, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	return page
}

func TestAdminListCampaignsPagesTheTab(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := AdminListCampaigns(stubCampaignsService{all: seedCampaignList(25)}, logg)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/admin/campaigns?page=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodeTabPage(t, rec)
	assert.Equal(t, float64(3), page["page"])
	assert.Equal(t, float64(3), page["total_pages"])
	assert.Equal(t, float64(25), page["total_rows"])
	rows, ok := page["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, 25-2*pagination.DefaultPageSize)
}

func TestAdminListCampaignsDefaultsToFirstPage(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := AdminListCampaigns(stubCampaignsService{all: seedCampaignList(25)}, logg)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/admin/campaigns", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodeTabPage(t, rec)
	assert.Equal(t, float64(1), page["page"])
	rows, ok := page["rows"].([]any)
	require.True(t, ok)
	assert.Len(t, rows, pagination.DefaultPageSize)
}

func TestAdminListCampaignsRejectsBadPage(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	handler := AdminListCampaigns(stubCampaignsService{all: seedCampaignList(3)}, logg)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/admin/campaigns?page=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
