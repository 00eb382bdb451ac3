package enums

import "fmt"

// UserRole distinguishes the three marketplace roles.
type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
)

var validUserRoles = []UserRole{UserRoleAdmin, UserRoleBuyer, UserRoleSeller}

// IsValid checks whether the role matches the canonical enum.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw strings into UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}

// UserStatus gates platform access for an account.
type UserStatus string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusApproved  UserStatus = "approved"
	UserStatusSuspended UserStatus = "suspended"
)

var validUserStatuses = []UserStatus{UserStatusPending, UserStatusApproved, UserStatusSuspended}

// IsValid checks whether the status matches the canonical enum.
func (s UserStatus) IsValid() bool {
	for _, candidate := range validUserStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseUserStatus converts raw strings into UserStatus.
func ParseUserStatus(value string) (UserStatus, error) {
	for _, candidate := range validUserStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user status %q", value)
}
