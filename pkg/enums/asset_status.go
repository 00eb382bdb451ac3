package enums

import "fmt"

// AssetStatus tracks where an advertising asset sits in the listing lifecycle.
type AssetStatus string

const (
	AssetStatusPendingApproval AssetStatus = "Pending Approval"
	AssetStatusAvailable       AssetStatus = "Available"
	AssetStatusLive            AssetStatus = "Live"
	AssetStatusBooked          AssetStatus = "Booked"
	AssetStatusUnavailable     AssetStatus = "Unavailable"
)

var validAssetStatuses = []AssetStatus{
	AssetStatusPendingApproval,
	AssetStatusAvailable,
	AssetStatusLive,
	AssetStatusBooked,
	AssetStatusUnavailable,
}

// IsValid checks whether the given status matches the canonical enum.
func (s AssetStatus) IsValid() bool {
	for _, candidate := range validAssetStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsPubliclyVisible reports whether the asset shows up in the public marketplace.
func (s AssetStatus) IsPubliclyVisible() bool {
	switch s {
	case AssetStatusAvailable, AssetStatusLive, AssetStatusBooked:
		return true
	default:
		return false
	}
}

// ParseAssetStatus converts raw strings into AssetStatus.
func ParseAssetStatus(value string) (AssetStatus, error) {
	for _, candidate := range validAssetStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid asset status %q", value)
}
