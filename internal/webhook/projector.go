package webhook

import (
	"context"
	"errors"
	"fmt"

	"github.com/evently/webhook-service/internal/user"
)

// ErrMissingUserID indicates a user event without data.id.
var ErrMissingUserID = errors.New("event data is missing user id")

// Result is what a successful projection reports back to the provider.
type Result struct {
	Message string    `json:"message"`
	User    user.User `json:"user"`
}

// ProjectionError wraps a failure to apply an event to the user store.
type ProjectionError struct {
	EventType EventType
	ClerkID   string
	Err       error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("project %s for %q: %v", e.EventType, e.ClerkID, e.Err)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

// Projector mirrors identity events onto a user.Store. Each method makes
// exactly one store call.
type Projector struct {
	store user.Store
}

// NewProjector constructs a Projector over store.
func NewProjector(store user.Store) (*Projector, error) {
	if store == nil {
		return nil, errors.New("user store is required")
	}
	return &Projector{store: store}, nil
}

// Created stores a new user from a user.created payload.
func (p *Projector) Created(ctx context.Context, data UserData) (Result, error) {
	created, err := p.store.Create(ctx, user.CreateInput{
		ClerkID:   data.ID,
		Email:     data.PrimaryEmail(),
		Username:  data.Username,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Photo:     data.ImageURL,
	})
	if err != nil {
		return Result{}, &ProjectionError{EventType: EventUserCreated, ClerkID: data.ID, Err: err}
	}
	return Result{Message: "User created successfully", User: created}, nil
}

// Updated applies a user.updated payload. Email addresses in the payload are
// not propagated.
func (p *Projector) Updated(ctx context.Context, data UserData) (Result, error) {
	updated, err := p.store.Update(ctx, data.ID, user.UpdateInput{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Username:  data.Username,
		Photo:     data.ImageURL,
	})
	if err != nil {
		return Result{}, &ProjectionError{EventType: EventUserUpdated, ClerkID: data.ID, Err: err}
	}
	return Result{Message: "User updated successfully", User: updated}, nil
}

// Deleted removes the user named by a user.deleted payload.
func (p *Projector) Deleted(ctx context.Context, data DeletedData) (Result, error) {
	if data.ID == "" {
		return Result{}, &ProjectionError{EventType: EventUserDeleted, Err: ErrMissingUserID}
	}

	deleted, err := p.store.Delete(ctx, data.ID)
	if err != nil {
		return Result{}, &ProjectionError{EventType: EventUserDeleted, ClerkID: data.ID, Err: err}
	}
	return Result{Message: "User deleted successfully", User: deleted}, nil
}
