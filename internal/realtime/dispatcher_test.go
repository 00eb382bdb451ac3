package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	"github.com/beatspace-ads/beatspace-backend/pkg/outbox"
)

type stubBells struct {
	created  []*models.Notification
	roleRows map[enums.UserRole][]*models.Notification
}

func (s *stubBells) Create(_ context.Context, notification *models.Notification) error {
	s.created = append(s.created, notification)
	return nil
}

func (s *stubBells) CreateForRole(_ context.Context, role enums.UserRole, template *models.Notification) error {
	if s.roleRows == nil {
		s.roleRows = map[enums.UserRole][]*models.Notification{}
	}
	s.roleRows[role] = append(s.roleRows[role], template)
	return nil
}

type stubHub struct {
	broadcasts []Frame
	targeted   map[uuid.UUID][]Frame
	roleFrames map[enums.UserRole][]Frame
}

func newStubHub() *stubHub {
	return &stubHub{
		targeted:   map[uuid.UUID][]Frame{},
		roleFrames: map[enums.UserRole][]Frame{},
	}
}

func (s *stubHub) Broadcast(frame Frame) {
	s.broadcasts = append(s.broadcasts, frame)
}

func (s *stubHub) BroadcastTo(userID uuid.UUID, frame Frame) {
	s.targeted[userID] = append(s.targeted[userID], frame)
}

func (s *stubHub) BroadcastToRole(role enums.UserRole, frame Frame) {
	s.roleFrames[role] = append(s.roleFrames[role], frame)
}

func (s *stubHub) frameCount() int {
	total := len(s.broadcasts)
	for _, frames := range s.targeted {
		total += len(frames)
	}
	return total
}

type stubRefresh struct {
	marks int
}

func (s *stubRefresh) MarkDirty() { s.marks++ }

type dispatcherFixture struct {
	dispatcher *Dispatcher
	bells      *stubBells
	hub        *stubHub
	refresh    *stubRefresh
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()
	bells := &stubBells{}
	hub := newStubHub()
	refresh := &stubRefresh{}
	dispatcher, err := NewDispatcher(bells, hub, refresh, nil)
	require.NoError(t, err)
	return &dispatcherFixture{dispatcher: dispatcher, bells: bells, hub: hub, refresh: refresh}
}

func envelopeFor(t *testing.T, buyerID, offerID uuid.UUID) outbox.PayloadEnvelope {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"buyer_id": buyerID,
		"offer_id": offerID,
	})
	require.NoError(t, err)
	return outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: data}
}

func TestDispatchPersistsOneRowAndOneFrame(t *testing.T) {
	fix := newDispatcherFixture(t)
	buyerID := uuid.New()
	offerID := uuid.New()

	err := fix.dispatcher.Dispatch(context.Background(), "QUOTE_SUBMITTED", envelopeFor(t, buyerID, offerID))
	require.NoError(t, err)

	require.Len(t, fix.bells.created, 1)
	row := fix.bells.created[0]
	assert.Equal(t, buyerID, row.UserID)
	assert.Equal(t, "Price Quoted", row.Title)
	assert.Equal(t, enums.NotificationTypeOfferUpdate, row.Type)
	require.NotNil(t, row.Link)
	assert.Equal(t, "/offers/requests/"+offerID.String(), *row.Link)

	assert.Equal(t, 1, fix.hub.frameCount())
	require.Len(t, fix.hub.targeted[buyerID], 1)
	assert.Equal(t, "QUOTE_SUBMITTED", fix.hub.targeted[buyerID][0].Type)

	assert.Equal(t, 1, fix.refresh.marks)
}

func TestDispatchLowercaseAlias(t *testing.T) {
	fix := newDispatcherFixture(t)
	buyerID := uuid.New()

	err := fix.dispatcher.Dispatch(context.Background(), "offer_approved", envelopeFor(t, buyerID, uuid.New()))
	require.NoError(t, err)

	require.Len(t, fix.bells.created, 1)
	assert.Equal(t, "Offer Approved", fix.bells.created[0].Title)
}

func TestDispatchUnknownTypeFallsBackToNewUpdate(t *testing.T) {
	fix := newDispatcherFixture(t)
	buyerID := uuid.New()

	err := fix.dispatcher.Dispatch(context.Background(), "OFFER_TELEPORTED", envelopeFor(t, buyerID, uuid.New()))
	require.NoError(t, err)

	require.Len(t, fix.bells.created, 1)
	assert.Equal(t, "New Update", fix.bells.created[0].Title)
	assert.Equal(t, enums.NotificationTypeSystemAnnouncement, fix.bells.created[0].Type)
	assert.Equal(t, 1, fix.refresh.marks)
}

func TestDispatchControlFramesAreIgnored(t *testing.T) {
	fix := newDispatcherFixture(t)

	for _, eventType := range []string{"connection_status", "pong", "PONG"} {
		err := fix.dispatcher.Dispatch(context.Background(), eventType, outbox.PayloadEnvelope{})
		require.NoError(t, err)
	}

	assert.Empty(t, fix.bells.created)
	assert.Zero(t, fix.hub.frameCount())
	assert.Zero(t, fix.refresh.marks)
}

func TestDispatchWithoutRecipientBroadcasts(t *testing.T) {
	fix := newDispatcherFixture(t)

	err := fix.dispatcher.Dispatch(context.Background(), "NEW_OFFER_REQUEST", outbox.PayloadEnvelope{})
	require.NoError(t, err)

	assert.Empty(t, fix.bells.created, "no bell row without a recipient")
	assert.Len(t, fix.hub.broadcasts, 1)
	assert.Equal(t, 1, fix.refresh.marks)
}

func TestDispatchBuyerActivityReachesAdmins(t *testing.T) {
	fix := newDispatcherFixture(t)
	buyerID := uuid.New()
	offerID := uuid.New()

	for _, eventType := range []string{"NEW_OFFER_REQUEST", "REVISION_REQUESTED", "OFFER_CANCELLED", "OFFER_APPROVED"} {
		err := fix.dispatcher.Dispatch(context.Background(), eventType, envelopeFor(t, buyerID, offerID))
		require.NoError(t, err)
	}

	require.Len(t, fix.bells.roleRows[enums.UserRoleAdmin], 4)
	adminRow := fix.bells.roleRows[enums.UserRoleAdmin][0]
	assert.Equal(t, "New Offer Request", adminRow.Title)
	require.NotNil(t, adminRow.Link)
	assert.Equal(t, "/offers/requests/"+offerID.String(), *adminRow.Link)

	require.Len(t, fix.hub.roleFrames[enums.UserRoleAdmin], 4)
	assert.Equal(t, "NEW_OFFER_REQUEST", fix.hub.roleFrames[enums.UserRoleAdmin][0].Type)

	// The buyer still receives their own bell rows and toasts.
	assert.Len(t, fix.bells.created, 4)
	assert.Len(t, fix.hub.targeted[buyerID], 4)
}

func TestDispatchAdminActivityStaysOffAdminBells(t *testing.T) {
	fix := newDispatcherFixture(t)
	buyerID := uuid.New()

	err := fix.dispatcher.Dispatch(context.Background(), "QUOTE_SUBMITTED", envelopeFor(t, buyerID, uuid.New()))
	require.NoError(t, err)

	assert.Empty(t, fix.bells.roleRows[enums.UserRoleAdmin])
	assert.Empty(t, fix.hub.roleFrames[enums.UserRoleAdmin])
	require.Len(t, fix.hub.targeted[buyerID], 1)
}

// A burst of events produces one row and one frame apiece, but the refresh
// signal coalesces downstream.
func TestDispatchBurstRowPerEvent(t *testing.T) {
	fix := newDispatcherFixture(t)
	buyerID := uuid.New()

	for i := 0; i < 5; i++ {
		err := fix.dispatcher.Dispatch(context.Background(), "OFFER_REJECTED", envelopeFor(t, buyerID, uuid.New()))
		require.NoError(t, err)
	}

	assert.Len(t, fix.bells.created, 5)
	assert.Equal(t, 5, fix.hub.frameCount())
	assert.Equal(t, 5, fix.refresh.marks)
}
