package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evently/webhook-service/internal/user"
)

type fakeStore struct {
	createFn func(context.Context, user.CreateInput) (user.User, error)
	updateFn func(context.Context, string, user.UpdateInput) (user.User, error)
	deleteFn func(context.Context, string) (user.User, error)

	calls int
}

func (f *fakeStore) Create(ctx context.Context, input user.CreateInput) (user.User, error) {
	f.calls++
	if f.createFn != nil {
		return f.createFn(ctx, input)
	}
	return user.User{}, errors.New("createFn not provided")
}

func (f *fakeStore) Update(ctx context.Context, clerkID string, input user.UpdateInput) (user.User, error) {
	f.calls++
	if f.updateFn != nil {
		return f.updateFn(ctx, clerkID, input)
	}
	return user.User{}, errors.New("updateFn not provided")
}

func (f *fakeStore) Delete(ctx context.Context, clerkID string) (user.User, error) {
	f.calls++
	if f.deleteFn != nil {
		return f.deleteFn(ctx, clerkID)
	}
	return user.User{}, errors.New("deleteFn not provided")
}

func (f *fakeStore) GetByClerkID(context.Context, string) (user.User, error) {
	return user.User{}, user.ErrNotFound
}

func newTestRouter(t *testing.T, store user.Store) *Router {
	t.Helper()
	p, err := NewProjector(store)
	require.NoError(t, err)
	return NewRouter(p)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantType EventType
		wantErr  bool
	}{
		{name: "user created", body: `{"type":"user.created","data":{"id":"u_1"},"object":"event"}`, wantType: EventUserCreated},
		{name: "unknown type still decodes", body: `{"type":"user.banned","data":{}}`, wantType: "user.banned"},
		{name: "not json", body: `type=user.created`, wantErr: true},
		{name: "array", body: `[{"type":"user.created"}]`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "missing type", body: `{"data":{}}`, wantErr: true},
		{name: "numeric type", body: `{"type":5,"data":{}}`, wantErr: true},
		{name: "null type", body: `{"type":null,"data":{}}`, wantErr: true},
		{name: "missing data", body: `{"type":"user.created"}`, wantErr: true},
		{name: "string data", body: `{"type":"user.created","data":"u_1"}`, wantErr: true},
		{name: "null data", body: `{"type":"user.created","data":null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := Decode([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, evt.Type)
		})
	}
}

func TestRoute_Created(t *testing.T) {
	var got user.CreateInput
	store := &fakeStore{createFn: func(_ context.Context, in user.CreateInput) (user.User, error) {
		got = in
		return user.User{ID: "row-1", ClerkID: in.ClerkID, Email: in.Email}, nil
	}}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.created","data":{"id":"u_1","email_addresses":[{"email_address":"a@b.c"},{"email_address":"other@b.c"}],"image_url":"http://img","first_name":"A","last_name":"B","username":"ab"}}`))
	require.NoError(t, err)

	res, err := router.Route(context.Background(), evt)
	require.NoError(t, err)

	assert.Equal(t, user.CreateInput{
		ClerkID:   "u_1",
		Email:     "a@b.c",
		Username:  "ab",
		FirstName: "A",
		LastName:  "B",
		Photo:     "http://img",
	}, got)
	assert.Equal(t, "User created successfully", res.Message)
	assert.Equal(t, "row-1", res.User.ID)
	assert.Equal(t, 1, store.calls)
}

func TestRoute_CreatedFillsAbsentFields(t *testing.T) {
	var got user.CreateInput
	store := &fakeStore{createFn: func(_ context.Context, in user.CreateInput) (user.User, error) {
		got = in
		return user.User{ClerkID: in.ClerkID}, nil
	}}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.created","data":{"id":"u_2","email_addresses":[],"first_name":null}}`))
	require.NoError(t, err)

	_, err = router.Route(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, user.CreateInput{ClerkID: "u_2"}, got)
}

func TestRoute_UpdatedNeverPassesEmail(t *testing.T) {
	var (
		gotID    string
		gotInput user.UpdateInput
	)
	store := &fakeStore{updateFn: func(_ context.Context, id string, in user.UpdateInput) (user.User, error) {
		gotID, gotInput = id, in
		return user.User{ClerkID: id, FirstName: in.FirstName}, nil
	}}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.updated","data":{"id":"u_1","email_addresses":[{"email_address":"new@b.c"}],"first_name":"A2","last_name":"B","username":"ab","image_url":"http://img2"}}`))
	require.NoError(t, err)

	res, err := router.Route(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, "u_1", gotID)
	assert.Equal(t, user.UpdateInput{FirstName: "A2", LastName: "B", Username: "ab", Photo: "http://img2"}, gotInput)
	assert.Equal(t, "User updated successfully", res.Message)
}

func TestRoute_Deleted(t *testing.T) {
	var gotID string
	store := &fakeStore{deleteFn: func(_ context.Context, id string) (user.User, error) {
		gotID = id
		return user.User{ClerkID: id}, nil
	}}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.deleted","data":{"id":"u_1","deleted":true}}`))
	require.NoError(t, err)

	res, err := router.Route(context.Background(), evt)
	require.NoError(t, err)
	assert.Equal(t, "u_1", gotID)
	assert.Equal(t, "User deleted successfully", res.Message)
}

func TestRoute_DeletedWithoutID(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.deleted","data":{}}`))
	require.NoError(t, err)

	_, err = router.Route(context.Background(), evt)
	assert.ErrorIs(t, err, ErrMissingUserID)

	var perr *ProjectionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, EventUserDeleted, perr.EventType)
	assert.Zero(t, store.calls)
}

func TestRoute_StoreFailureCarriesContext(t *testing.T) {
	boom := errors.New("db down")
	store := &fakeStore{updateFn: func(context.Context, string, user.UpdateInput) (user.User, error) {
		return user.User{}, boom
	}}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.updated","data":{"id":"u_9"}}`))
	require.NoError(t, err)

	_, err = router.Route(context.Background(), evt)
	assert.ErrorIs(t, err, boom)

	var perr *ProjectionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, EventUserUpdated, perr.EventType)
	assert.Equal(t, "u_9", perr.ClerkID)
}

func TestRoute_UnknownType(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.banned","data":{}}`))
	require.NoError(t, err)

	assert.False(t, router.Handles(evt.Type))
	_, err = router.Route(context.Background(), evt)
	assert.ErrorIs(t, err, ErrUnhandledEvent)
	assert.Zero(t, store.calls)
}

func TestRoute_MistypedPayload(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, store)

	evt, err := Decode([]byte(`{"type":"user.created","data":{"id":42}}`))
	require.NoError(t, err)

	_, err = router.Route(context.Background(), evt)
	assert.ErrorIs(t, err, ErrMalformedEvent)
	assert.Zero(t, store.calls)
}

func TestNewProjector_RequiresStore(t *testing.T) {
	_, err := NewProjector(nil)
	assert.Error(t, err)
}
