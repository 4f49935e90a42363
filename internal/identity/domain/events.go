package domain

import (
	"strconv"

	sharedDomain "github.com/mirelabalan/fanvault/internal/shared/domain"
)

// Event routing keys for the identity context.
const (
	UserRegisteredRoutingKey = "identity.user.registered"
)

// UserRegistered is raised when a user contacts the storefront for the
// first time.
type UserRegistered struct {
	sharedDomain.BaseEvent
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// NewUserRegistered creates a new UserRegistered event.
func NewUserRegistered(userID int64, username string) *UserRegistered {
	return &UserRegistered{
		BaseEvent: sharedDomain.NewBaseEvent(strconv.FormatInt(userID, 10), "User", UserRegisteredRoutingKey),
		UserID:    userID,
		Username:  username,
	}
}
