package model

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the mobile platform a push token was issued on.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
)

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	return p == PlatformIOS || p == PlatformAndroid
}

// User represents a user record, keyed by the external identity subject
type User struct {
	ID         uuid.UUID
	Subject    string
	Email      *string
	Name       *string
	ImageURL   *string
	LastSeenAt time.Time
	CreatedAt  time.Time
}

// PushToken represents a device push token owned by a user. A user may own
// several tokens (one per device); the (UserID, Token) pair is unique.
type PushToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	Platform  *Platform
	UpdatedAt time.Time
	CreatedAt time.Time
}
