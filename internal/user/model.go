package user

import (
	"context"
	"errors"
	"time"
)

// User is the local projection of an identity-provider account.
type User struct {
	ID        string    `json:"id" firestore:"id"`
	ClerkID   string    `json:"clerkId" firestore:"clerk_id"`
	Email     string    `json:"email" firestore:"email"`
	Username  string    `json:"username" firestore:"username"`
	FirstName string    `json:"firstName" firestore:"first_name"`
	LastName  string    `json:"lastName" firestore:"last_name"`
	Photo     string    `json:"photo" firestore:"photo"`
	CreatedAt time.Time `json:"createdAt" firestore:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updated_at"`
}

// CreateInput carries every field of a freshly created account. Absent values are empty strings.
type CreateInput struct {
	ClerkID   string
	Email     string
	Username  string
	FirstName string
	LastName  string
	Photo     string
}

// UpdateInput is the mutable subset of a profile. ClerkID and Email are never part of an update.
type UpdateInput struct {
	FirstName string
	LastName  string
	Username  string
	Photo     string
}

// Store persists mirrored users keyed by their provider id.
//
// Create is an upsert on ClerkID so a redelivered creation converges on the
// same row. Update and Delete return ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, input CreateInput) (User, error)
	Update(ctx context.Context, clerkID string, input UpdateInput) (User, error)
	Delete(ctx context.Context, clerkID string) (User, error)
	GetByClerkID(ctx context.Context, clerkID string) (User, error)
}

var (
	// ErrNotFound indicates no user is stored under the requested provider id.
	ErrNotFound = errors.New("user not found")
	// ErrMissingClerkID indicates a call without the provider id.
	ErrMissingClerkID = errors.New("clerk id is required")
)

// Clock delivers the current time; extracted for deterministic testing
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for new rows
type IDGenerator interface {
	NewID() string
}
