package enums

import (
	"fmt"
	"strings"
)

// OfferStatus is the backend-owned lifecycle state of an offer request.
// The stored strings are what legacy clients submitted, case variants
// included, so parsing is case-insensitive while storage keeps the
// canonical spelling.
type OfferStatus string

const (
	OfferStatusPending           OfferStatus = "Pending"
	OfferStatusQuoted            OfferStatus = "Quoted"
	OfferStatusInProcess         OfferStatus = "In Process"
	OfferStatusRevisionRequested OfferStatus = "Revision Requested"
	OfferStatusApproved          OfferStatus = "Approved"
	OfferStatusAccepted          OfferStatus = "Accepted"
	OfferStatusRejected          OfferStatus = "Rejected"
	OfferStatusCancelled         OfferStatus = "Cancelled"
	OfferStatusBooked            OfferStatus = "Booked"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusPending,
	OfferStatusQuoted,
	OfferStatusInProcess,
	OfferStatusRevisionRequested,
	OfferStatusApproved,
	OfferStatusAccepted,
	OfferStatusRejected,
	OfferStatusCancelled,
	OfferStatusBooked,
}

// IsValid checks whether the status matches the canonical enum exactly.
func (s OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Equals compares against another status ignoring case.
func (s OfferStatus) Equals(other OfferStatus) bool {
	return strings.EqualFold(string(s), string(other))
}

// IsTerminal reports whether the offer no longer requires admin attention.
// Terminal membership is exact-match on the stored spelling.
func (s OfferStatus) IsTerminal() bool {
	switch s {
	case OfferStatusApproved, OfferStatusRejected, OfferStatusAccepted:
		return true
	default:
		return false
	}
}

// ParseOfferStatus normalizes raw input to the canonical spelling.
func ParseOfferStatus(value string) (OfferStatus, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validOfferStatuses {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}
