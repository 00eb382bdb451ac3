package campaigns

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox"
)

type stubCampaignRepo struct {
	campaigns map[uuid.UUID]*models.Campaign
}

func newStubCampaignRepo(seed ...*models.Campaign) *stubCampaignRepo {
	repo := &stubCampaignRepo{campaigns: map[uuid.UUID]*models.Campaign{}}
	for _, campaign := range seed {
		repo.campaigns[campaign.ID] = campaign
	}
	return repo
}

func (r *stubCampaignRepo) WithTx(_ *gorm.DB) Repository { return r }

func (r *stubCampaignRepo) Create(_ context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	stored := *campaign
	r.campaigns[campaign.ID] = &stored
	return campaign, nil
}

func (r *stubCampaignRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, ok := r.campaigns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *campaign
	return &clone, nil
}

func (r *stubCampaignRepo) ListAll(_ context.Context) ([]models.Campaign, error) {
	var rows []models.Campaign
	for _, campaign := range r.campaigns {
		rows = append(rows, *campaign)
	}
	return rows, nil
}

func (r *stubCampaignRepo) ListByBuyer(_ context.Context, buyerID uuid.UUID) ([]models.Campaign, error) {
	var rows []models.Campaign
	for _, campaign := range r.campaigns {
		if campaign.BuyerID == buyerID {
			rows = append(rows, *campaign)
		}
	}
	return rows, nil
}

func (r *stubCampaignRepo) Update(_ context.Context, campaign *models.Campaign) error {
	stored := *campaign
	r.campaigns[campaign.ID] = &stored
	return nil
}

func (r *stubCampaignRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.campaigns, id)
	return nil
}

func (r *stubCampaignRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.campaigns)), nil
}

func (r *stubCampaignRepo) CountByStatus(_ context.Context, status enums.CampaignStatus) (int64, error) {
	var count int64
	for _, campaign := range r.campaigns {
		if campaign.Status == status {
			count++
		}
	}
	return count, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type outboxRecorder struct {
	events []outbox.DomainEvent
}

func (o *outboxRecorder) Emit(_ context.Context, _ *gorm.DB, event outbox.DomainEvent) error {
	o.events = append(o.events, event)
	return nil
}

type stubUserFinder struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserFinder) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type campaignFixture struct {
	svc    Service
	repo   *stubCampaignRepo
	outbox *outboxRecorder
	users  *stubUserFinder
}

func newCampaignFixture(t *testing.T, seed ...*models.Campaign) *campaignFixture {
	t.Helper()

	repo := newStubCampaignRepo(seed...)
	recorder := &outboxRecorder{}
	users := &stubUserFinder{users: map[uuid.UUID]*models.User{}}

	svc, err := NewService(repo, stubTxRunner{}, recorder, users)
	require.NoError(t, err)

	return &campaignFixture{svc: svc, repo: repo, outbox: recorder, users: users}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded, "expected a coded error, got %v", err)
	assert.Equal(t, want, coded.Code())
}

func seedCampaign(status enums.CampaignStatus) *models.Campaign {
	return &models.Campaign{
		ID:        uuid.New(),
		BuyerID:   uuid.New(),
		BuyerName: "Acme Media",
		Name:      "Summer Push",
		Status:    status,
	}
}

func TestCreateDenormalizesBuyer(t *testing.T) {
	fix := newCampaignFixture(t)
	buyerID := uuid.New()
	fix.users.users[buyerID] = &models.User{ID: buyerID, CompanyName: "Acme Media"}

	campaign, err := fix.svc.Create(context.Background(), Actor{UserID: buyerID, Role: enums.UserRoleBuyer}, CreateCampaignInput{
		Name: "  Summer Push  ",
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Media", campaign.BuyerName)
	assert.Equal(t, "Summer Push", campaign.Name)
	assert.Equal(t, enums.CampaignStatusDraft, campaign.Status)
}

func TestCreateValidatesDates(t *testing.T) {
	fix := newCampaignFixture(t)
	buyerID := uuid.New()
	fix.users.users[buyerID] = &models.User{ID: buyerID}

	start := time.Now()
	end := start.Add(-24 * time.Hour)
	_, err := fix.svc.Create(context.Background(), Actor{UserID: buyerID, Role: enums.UserRoleBuyer}, CreateCampaignInput{
		Name:      "Backwards",
		StartDate: &start,
		EndDate:   &end,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateRejectsNegativeBudget(t *testing.T) {
	fix := newCampaignFixture(t)
	buyerID := uuid.New()
	fix.users.users[buyerID] = &models.User{ID: buyerID}

	budget := -100.0
	_, err := fix.svc.Create(context.Background(), Actor{UserID: buyerID, Role: enums.UserRoleBuyer}, CreateCampaignInput{
		Name:   "Bad Budget",
		Budget: &budget,
	})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateOwnerOnly(t *testing.T) {
	campaign := seedCampaign(enums.CampaignStatusDraft)
	fix := newCampaignFixture(t, campaign)

	name := "Hijacked"
	_, err := fix.svc.Update(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}, campaign.ID, UpdateCampaignInput{Name: &name})
	assertCode(t, err, pkgerrors.CodeForbidden)

	name = "Autumn Push"
	updated, err := fix.svc.Update(context.Background(), Actor{UserID: campaign.BuyerID, Role: enums.UserRoleBuyer}, campaign.ID, UpdateCampaignInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Autumn Push", updated.Name)
}

func TestGetForbiddenForOtherBuyers(t *testing.T) {
	campaign := seedCampaign(enums.CampaignStatusLive)
	fix := newCampaignFixture(t, campaign)

	_, err := fix.svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleBuyer}, campaign.ID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	got, err := fix.svc.Get(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.ID, got.ID)
}

func TestSetStatusAdminOnlyAndEmits(t *testing.T) {
	campaign := seedCampaign(enums.CampaignStatusDraft)
	fix := newCampaignFixture(t, campaign)

	_, err := fix.svc.SetStatus(context.Background(), Actor{UserID: campaign.BuyerID, Role: enums.UserRoleBuyer}, campaign.ID, SetStatusInput{Status: "Live"})
	assertCode(t, err, pkgerrors.CodeForbidden)

	updated, err := fix.svc.SetStatus(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, campaign.ID, SetStatusInput{Status: "Live"})
	require.NoError(t, err)
	assert.Equal(t, enums.CampaignStatusLive, updated.Status)

	require.Len(t, fix.outbox.events, 1)
	assert.Equal(t, enums.EventCampaignStatusChanged, fix.outbox.events[0].EventType)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	campaign := seedCampaign(enums.CampaignStatusDraft)
	fix := newCampaignFixture(t, campaign)

	_, err := fix.svc.SetStatus(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, campaign.ID, SetStatusInput{Status: "Paused"})
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestDeleteAdminBypassesOwnership(t *testing.T) {
	campaign := seedCampaign(enums.CampaignStatusDraft)
	fix := newCampaignFixture(t, campaign)

	err := fix.svc.Delete(context.Background(), Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, fix.repo.campaigns)
}
