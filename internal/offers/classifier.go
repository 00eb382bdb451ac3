package offers

import (
	"fmt"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

// BuyerStatusFor reduces an offer's weakly-correlated raw signals (status
// string, boolean flags, quoted price) to the single label buyers see. Total:
// every reachable field combination maps to a status, first match wins.
func BuyerStatusFor(offer models.OfferRequest) enums.BuyerStatus {
	switch {
	case offer.Status.Equals(enums.OfferStatusCancelled),
		offer.CancelledByBuyer != nil && *offer.CancelledByBuyer,
		offer.Status.Equals(enums.OfferStatusRejected):
		return enums.BuyerStatusOfferRejected

	case offer.Status.Equals(enums.OfferStatusApproved),
		offer.Status.Equals(enums.OfferStatusAccepted):
		return enums.BuyerStatusBuyerApproved

	case offer.RevisionRequested != nil && *offer.RevisionRequested,
		offer.Status.Equals(enums.OfferStatusRevisionRequested):
		return enums.BuyerStatusRequestForRevised

	case hasQuote(offer):
		return enums.BuyerStatusPriceQuoted

	default:
		return enums.BuyerStatusNewRequest
	}
}

// AdminStatusFor renders the admin-facing label: "Quoted #n" once a positive
// quote exists, "Need to quote" otherwise. A stored count below 1 is shown as
// 1 because the row cannot carry a quote without at least one submission.
func AdminStatusFor(offer models.OfferRequest) string {
	if !hasQuote(offer) {
		return "Need to quote"
	}
	count := offer.QuoteCount
	if count < 1 {
		count = 1
	}
	return fmt.Sprintf("Quoted #%d", count)
}

// IsActive reports whether the offer still needs admin attention. The terminal
// set is matched exactly as stored; a lowercase "approved" row stays active.
func IsActive(offer models.OfferRequest) bool {
	return !offer.Status.IsTerminal()
}

func hasQuote(offer models.OfferRequest) bool {
	return offer.AdminQuotedPrice != nil && *offer.AdminQuotedPrice > 0
}
