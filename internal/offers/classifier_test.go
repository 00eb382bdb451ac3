package offers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

func ptrFloat(v float64) *float64 { return &v }
func ptrBool(v bool) *bool        { return &v }

func TestBuyerStatusPriorityOrder(t *testing.T) {
	tests := []struct {
		name  string
		offer models.OfferRequest
		want  enums.BuyerStatus
	}{
		{
			name:  "rejection dominates an outstanding quote",
			offer: models.OfferRequest{Status: enums.OfferStatusRejected, AdminQuotedPrice: ptrFloat(500)},
			want:  enums.BuyerStatusOfferRejected,
		},
		{
			name:  "cancelled by buyer flag wins regardless of status",
			offer: models.OfferRequest{Status: enums.OfferStatusQuoted, CancelledByBuyer: ptrBool(true), AdminQuotedPrice: ptrFloat(900)},
			want:  enums.BuyerStatusOfferRejected,
		},
		{
			name:  "cancelled status",
			offer: models.OfferRequest{Status: enums.OfferStatusCancelled},
			want:  enums.BuyerStatusOfferRejected,
		},
		{
			name:  "approved",
			offer: models.OfferRequest{Status: enums.OfferStatusApproved},
			want:  enums.BuyerStatusBuyerApproved,
		},
		{
			name:  "accepted counts as approved",
			offer: models.OfferRequest{Status: enums.OfferStatusAccepted, AdminQuotedPrice: ptrFloat(100)},
			want:  enums.BuyerStatusBuyerApproved,
		},
		{
			name:  "revision flag beats quoted price",
			offer: models.OfferRequest{Status: enums.OfferStatusQuoted, RevisionRequested: ptrBool(true), AdminQuotedPrice: ptrFloat(100)},
			want:  enums.BuyerStatusRequestForRevised,
		},
		{
			name:  "revision status without the flag",
			offer: models.OfferRequest{Status: enums.OfferStatusRevisionRequested},
			want:  enums.BuyerStatusRequestForRevised,
		},
		{
			name:  "positive quote",
			offer: models.OfferRequest{Status: enums.OfferStatusQuoted, AdminQuotedPrice: ptrFloat(1500)},
			want:  enums.BuyerStatusPriceQuoted,
		},
		{
			name:  "zero quote is no quote",
			offer: models.OfferRequest{Status: enums.OfferStatusPending, AdminQuotedPrice: ptrFloat(0)},
			want:  enums.BuyerStatusNewRequest,
		},
		{
			name:  "fresh request",
			offer: models.OfferRequest{Status: enums.OfferStatusPending},
			want:  enums.BuyerStatusNewRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuyerStatusFor(tc.offer))
		})
	}
}

func TestBuyerStatusCaseInsensitiveAndTotal(t *testing.T) {
	lowered := models.OfferRequest{Status: enums.OfferStatus("rejected")}
	assert.Equal(t, enums.BuyerStatusOfferRejected, BuyerStatusFor(lowered))

	// Unknown status strings never panic or produce an empty label.
	weird := models.OfferRequest{Status: enums.OfferStatus("something new")}
	assert.Equal(t, enums.BuyerStatusNewRequest, BuyerStatusFor(weird))
}

func TestBuyerStatusIsPure(t *testing.T) {
	offer := models.OfferRequest{Status: enums.OfferStatusQuoted, AdminQuotedPrice: ptrFloat(200)}
	first := BuyerStatusFor(offer)
	second := BuyerStatusFor(offer)
	assert.Equal(t, first, second)
}

func TestAdminStatusQuoteCountNormalization(t *testing.T) {
	tests := []struct {
		name  string
		offer models.OfferRequest
		want  string
	}{
		{
			name:  "stored count shows as-is",
			offer: models.OfferRequest{AdminQuotedPrice: ptrFloat(1000), QuoteCount: 3},
			want:  "Quoted #3",
		},
		{
			name:  "zero count with a quote defaults to 1",
			offer: models.OfferRequest{AdminQuotedPrice: ptrFloat(1000), QuoteCount: 0},
			want:  "Quoted #1",
		},
		{
			name:  "negative count clamps to 1",
			offer: models.OfferRequest{AdminQuotedPrice: ptrFloat(1000), QuoteCount: -2},
			want:  "Quoted #1",
		},
		{
			name:  "zero price means no quote",
			offer: models.OfferRequest{AdminQuotedPrice: ptrFloat(0), QuoteCount: 5},
			want:  "Need to quote",
		},
		{
			name:  "nil price means no quote",
			offer: models.OfferRequest{QuoteCount: 2},
			want:  "Need to quote",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdminStatusFor(tc.offer))
		})
	}
}

func TestActiveSetMembership(t *testing.T) {
	terminal := []enums.OfferStatus{
		enums.OfferStatusApproved,
		enums.OfferStatusRejected,
		enums.OfferStatusAccepted,
	}
	for _, status := range terminal {
		assert.False(t, IsActive(models.OfferRequest{Status: status}), "status %s should be terminal", status)
	}

	active := []enums.OfferStatus{
		enums.OfferStatusPending,
		enums.OfferStatusQuoted,
		enums.OfferStatusInProcess,
		enums.OfferStatusRevisionRequested,
		enums.OfferStatusCancelled,
		enums.OfferStatusBooked,
		enums.OfferStatus("approved"), // terminal set is matched exactly as stored
	}
	for _, status := range active {
		assert.True(t, IsActive(models.OfferRequest{Status: status}), "status %s should stay active", status)
	}
}
