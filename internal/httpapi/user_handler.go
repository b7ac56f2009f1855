package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evently/webhook-service/internal/auth"
	"github.com/evently/webhook-service/internal/logging"
	"github.com/evently/webhook-service/internal/user"
)

const serviceTimeout = 8 * time.Second

// UserReader looks up mirrored users.
type UserReader interface {
	GetByClerkID(ctx context.Context, clerkID string) (user.User, error)
}

// RegisterUserRoutes registers the read side of the mirrored user table. The
// routes expect the auth gate to have attached the caller's identity.
func RegisterUserRoutes(r chi.Router, users UserReader, logger *slog.Logger) {
	r.Route("/v1/users", func(r chi.Router) {
		r.Get("/me", getMe(users, logger))
	})
}

func getMe(users UserReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := auth.UserFromContext(r.Context())
		if !ok || caller.UserID == "" {
			writeError(w, r, http.StatusUnauthorized, "missing user identity")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		u, err := users.GetByClerkID(ctx, caller.UserID)
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "user not synced yet")
			return
		}
		if err != nil {
			logging.WithRequestID(r.Context(), logger).Error("failed to load user",
				slog.Any("error", err), slog.String("clerkId", caller.UserID))
			writeError(w, r, http.StatusInternalServerError, "failed to load user")
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}
