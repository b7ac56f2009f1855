package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{header: "", wantErr: errMissingAuthHeader},
		{header: "Basic abc", wantErr: errInvalidAuthHeader},
		{header: "Bearer   ", wantErr: errInvalidAuthHeader},
		{header: "bearer tok", want: "tok"},
		{header: "Bearer  tok ", want: "tok"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		got, err := tokenFromRequest(req)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "header %q", tt.header)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier(Config{Mode: ModeNoop})
	require.NoError(t, err)

	u, err := v.Verify(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "user_1", u.UserID)

	_, err = NewVerifier(Config{Mode: "saml"})
	assert.Error(t, err)

	_, err = NewVerifier(Config{Mode: ModeClerk})
	assert.Error(t, err, "clerk mode needs a JWKS URL")
}

func TestClaimsToUser(t *testing.T) {
	exp := time.Unix(1_700_000_600, 0)
	claims := jwt.MapClaims{
		"sub": "user_1",
		"sid": "sess_1",
		"exp": float64(exp.Unix()),
	}

	u, err := claimsToUser(claims, "tok")
	require.NoError(t, err)
	assert.Equal(t, AuthenticatedUser{UserID: "user_1", SessionID: "sess_1", ExpiresAt: exp.Unix(), Token: "tok"}, u)

	_, err = claimsToUser(jwt.MapClaims{"sid": "sess_1"}, "tok")
	assert.ErrorIs(t, err, errMissingSubject)
}

func TestOptional_InvalidTokenIsIgnored(t *testing.T) {
	called := false
	handler := Optional(newNoopVerifier(Config{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_, ok := UserFromContext(r.Context())
		assert.False(t, ok)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token nope")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}
