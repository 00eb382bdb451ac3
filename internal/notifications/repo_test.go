package notifications

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  link TEXT,
  read_at DATETIME,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL,
  password_hash TEXT NOT NULL DEFAULT '',
  company_name TEXT NOT NULL DEFAULT '',
  contact_name TEXT NOT NULL DEFAULT '',
  phone TEXT,
  role TEXT NOT NULL,
  status TEXT NOT NULL,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role enums.UserRole, status enums.UserStatus) models.User {
	t.Helper()
	row := models.User{
		ID:     uuid.New(),
		Email:  fmt.Sprintf("%s@example.com", uuid.NewString()),
		Role:   role,
		Status: status,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, createdAt time.Time, readAt *time.Time) models.Notification {
	t.Helper()
	row := models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeOfferUpdate,
		Title:     "Offer Approved",
		Message:   "An offer was approved.",
		ReadAt:    readAt,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(&row).Error)
	return row
}

func TestRepositoryListPaginatesWithCursor(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), nil)
	}
	// Another user's rows never leak into the listing.
	seedNotification(t, db, uuid.New(), base, nil)

	first, cursor, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)
	assert.True(t, first[0].CreatedAt.After(first[1].CreatedAt))

	second, _, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.True(t, first[1].CreatedAt.After(second[0].CreatedAt) || first[1].CreatedAt.Equal(second[0].CreatedAt))
	for _, row := range second {
		assert.NotEqual(t, first[0].ID, row.ID)
		assert.NotEqual(t, first[1].ID, row.ID)
	}
}

func TestRepositoryListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	read := now.Add(-time.Hour)
	seedNotification(t, db, userID, now.Add(-2*time.Hour), &read)
	unread := seedNotification(t, db, userID, now.Add(-time.Hour), nil)

	rows, _, err := repo.List(context.Background(), listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unread.ID, rows[0].ID)

	count, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepositoryMarkReadScopedToOwner(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()
	row := seedNotification(t, db, userID, time.Now().UTC(), nil)

	foreign, err := repo.MarkRead(context.Background(), uuid.New(), row.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, foreign.Found)
	assert.False(t, foreign.Updated)

	own, err := repo.MarkRead(context.Background(), userID, row.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, own.Found)
	assert.True(t, own.Updated)

	// Marking an already-read row reports found but not updated.
	again, err := repo.MarkRead(context.Background(), userID, row.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, again.Found)
	assert.False(t, again.Updated)
}

func TestRepositoryMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	seedNotification(t, db, userID, now.Add(-2*time.Hour), nil)
	seedNotification(t, db, userID, now.Add(-time.Hour), nil)

	updated, err := repo.MarkAllRead(context.Background(), userID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRepositoryDeleteOlderThanKeepsUnread(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	readAt := now.Add(-100 * 24 * time.Hour)
	oldRead := seedNotification(t, db, userID, now.Add(-120*24*time.Hour), &readAt)
	oldUnread := seedNotification(t, db, userID, now.Add(-120*24*time.Hour), nil)
	recentRead := seedNotification(t, db, userID, now.Add(-time.Hour), &now)

	deleted, err := repo.DeleteOlderThan(context.Background(), now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []models.Notification
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 2)
	ids := []uuid.UUID{remaining[0].ID, remaining[1].ID}
	assert.Contains(t, ids, oldUnread.ID)
	assert.Contains(t, ids, recentRead.ID)
	assert.NotContains(t, ids, oldRead.ID)
}

func TestRepositoryCreateForRoleFansOutPerAccount(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	adminA := seedUser(t, db, enums.UserRoleAdmin, enums.UserStatusApproved)
	adminB := seedUser(t, db, enums.UserRoleAdmin, enums.UserStatusApproved)
	seedUser(t, db, enums.UserRoleAdmin, enums.UserStatusSuspended)
	seedUser(t, db, enums.UserRoleBuyer, enums.UserStatusApproved)

	link := "/offers/requests/abc"
	template := &models.Notification{
		Type:    enums.NotificationTypeOfferUpdate,
		Title:   "New Offer Request",
		Message: "A buyer requested a quote.",
		Link:    &link,
	}
	require.NoError(t, repo.CreateForRole(context.Background(), enums.UserRoleAdmin, template))

	var rows []models.Notification
	require.NoError(t, db.Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	recipients := []uuid.UUID{rows[0].UserID, rows[1].UserID}
	assert.Contains(t, recipients, adminA.ID)
	assert.Contains(t, recipients, adminB.ID)
	for _, row := range rows {
		assert.Equal(t, "New Offer Request", row.Title)
		require.NotNil(t, row.Link)
		assert.Equal(t, link, *row.Link)
	}
}

func TestRepositoryCreateForRoleNoRecipientsIsNoop(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, repo.CreateForRole(context.Background(), enums.UserRoleAdmin, &models.Notification{
		Type:    enums.NotificationTypeOfferUpdate,
		Title:   "New Offer Request",
		Message: "A buyer requested a quote.",
	}))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}
