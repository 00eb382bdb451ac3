package enums

import "fmt"

// CampaignStatus tracks a buyer campaign through planning and delivery.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "Draft"
	CampaignStatusLive      CampaignStatus = "Live"
	CampaignStatusCompleted CampaignStatus = "Completed"
	CampaignStatusCancelled CampaignStatus = "Cancelled"
)

var validCampaignStatuses = []CampaignStatus{
	CampaignStatusDraft,
	CampaignStatusLive,
	CampaignStatusCompleted,
	CampaignStatusCancelled,
}

// IsValid checks whether the given status matches the canonical enum.
func (s CampaignStatus) IsValid() bool {
	for _, candidate := range validCampaignStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseCampaignStatus converts raw strings into CampaignStatus.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	for _, candidate := range validCampaignStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid campaign status %q", value)
}
