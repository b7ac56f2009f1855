package user

import (
	"time"

	"github.com/google/uuid"
)

type systemClock struct{}

// NewSystemClock returns a Clock implementation backed by time.Now.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

type uuidGenerator struct{}

// NewUUIDGenerator returns an IDGenerator that produces v7 UUIDs where available, falling back to v4.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{}
}

func (uuidGenerator) NewID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

func (i UpdateInput) apply(u *User, now time.Time) {
	u.FirstName = i.FirstName
	u.LastName = i.LastName
	u.Username = i.Username
	u.Photo = i.Photo
	u.UpdatedAt = now
}

func (i CreateInput) apply(u *User, now time.Time) {
	u.ClerkID = i.ClerkID
	u.Email = i.Email
	u.Username = i.Username
	u.FirstName = i.FirstName
	u.LastName = i.LastName
	u.Photo = i.Photo
	u.UpdatedAt = now
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
}
