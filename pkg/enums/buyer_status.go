package enums

// BuyerStatus is the buyer-facing display label the classifier derives
// from an offer's raw fields. It is never persisted.
type BuyerStatus string

const (
	BuyerStatusNewRequest        BuyerStatus = "New Request"
	BuyerStatusPriceQuoted       BuyerStatus = "Price Quoted"
	BuyerStatusRequestForRevised BuyerStatus = "Request for Revised"
	BuyerStatusBuyerApproved     BuyerStatus = "Buyer Approved"
	BuyerStatusOfferRejected     BuyerStatus = "Offer Rejected"
)

var validBuyerStatuses = []BuyerStatus{
	BuyerStatusNewRequest,
	BuyerStatusPriceQuoted,
	BuyerStatusRequestForRevised,
	BuyerStatusBuyerApproved,
	BuyerStatusOfferRejected,
}

// IsValid checks whether the label is one of the derived statuses.
func (b BuyerStatus) IsValid() bool {
	for _, candidate := range validBuyerStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// BuyerStatuses returns the closed set of derived labels, in filter order.
func BuyerStatuses() []BuyerStatus {
	out := make([]BuyerStatus, len(validBuyerStatuses))
	copy(out, validBuyerStatuses)
	return out
}
