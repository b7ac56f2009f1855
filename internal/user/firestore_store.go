package user

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const usersCollection = "users"

type firestoreStore struct {
	client *firestore.Client
	clock  Clock
	ids    IDGenerator
}

// NewFirestoreStore creates a Store backed by the "users" collection, one document per clerk id.
func NewFirestoreStore(client *firestore.Client, clock Clock, ids IDGenerator) Store {
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &firestoreStore{client: client, clock: clock, ids: ids}
}

func (s *firestoreStore) doc(clerkID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollection).Doc(clerkID)
}

func (s *firestoreStore) Create(ctx context.Context, input CreateInput) (User, error) {
	if input.ClerkID == "" {
		return User{}, ErrMissingClerkID
	}

	ref := s.doc(input.ClerkID)
	var out User

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var u User
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
			u.ID = s.ids.NewID()
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&u); err != nil {
				return fmt.Errorf("unmarshal user: %w", err)
			}
		}

		input.apply(&u, s.clock.Now().UTC())
		if err := tx.Set(ref, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return User{}, fmt.Errorf("create user %s: %w", input.ClerkID, err)
	}
	return out, nil
}

func (s *firestoreStore) Update(ctx context.Context, clerkID string, input UpdateInput) (User, error) {
	ref := s.doc(clerkID)
	var out User

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var u User
		if err := snap.DataTo(&u); err != nil {
			return fmt.Errorf("unmarshal user: %w", err)
		}
		input.apply(&u, s.clock.Now().UTC())

		if err := tx.Update(ref, []firestore.Update{
			{Path: "first_name", Value: u.FirstName},
			{Path: "last_name", Value: u.LastName},
			{Path: "username", Value: u.Username},
			{Path: "photo", Value: u.Photo},
			{Path: "updated_at", Value: u.UpdatedAt},
		}); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return User{}, fmt.Errorf("update user %s: %w", clerkID, err)
	}
	return out, nil
}

func (s *firestoreStore) Delete(ctx context.Context, clerkID string) (User, error) {
	ref := s.doc(clerkID)
	var out User

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := snap.DataTo(&out); err != nil {
			return fmt.Errorf("unmarshal user: %w", err)
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return User{}, fmt.Errorf("delete user %s: %w", clerkID, err)
	}
	return out, nil
}

func (s *firestoreStore) GetByClerkID(ctx context.Context, clerkID string) (User, error) {
	snap, err := s.doc(clerkID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	var u User
	if err := snap.DataTo(&u); err != nil {
		return User{}, fmt.Errorf("unmarshal user: %w", err)
	}
	return u, nil
}
