package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evently/webhook-service/internal/logging"
	"github.com/evently/webhook-service/internal/svix"
	"github.com/evently/webhook-service/internal/webhook"
)

const (
	// ClerkWebhookPath receives Clerk user lifecycle deliveries.
	ClerkWebhookPath = "/api/webhook/clerk"

	maxWebhookBodyBytes = 1 << 20
)

// Response bodies for the webhook endpoint; the log carries the cause.
const (
	msgMissingHeaders   = "Error occurred -- missing Svix headers"
	msgUnreadableBody   = "Error occurred -- unreadable body"
	msgVerifyFailed     = "Error occurred during webhook verification"
	msgMalformedPayload = "Error occurred -- malformed webhook payload"
	msgUnhandledEvent   = "Unhandled event type"
	msgInternalError    = "Internal Server Error"
)

// SignatureVerifier authenticates a delivery from its headers and raw body.
type SignatureVerifier interface {
	Verify(header http.Header, body []byte) error
}

// EventRouter projects a decoded event.
type EventRouter interface {
	Route(ctx context.Context, evt webhook.Event) (webhook.Result, error)
}

// RegisterWebhookRoutes binds the Clerk webhook endpoint.
func RegisterWebhookRoutes(r chi.Router, verifier SignatureVerifier, events EventRouter, logger *slog.Logger) {
	r.Post(ClerkWebhookPath, clerkWebhook(verifier, events, logger))
}

func clerkWebhook(verifier SignatureVerifier, events EventRouter, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logging.WithRequestID(r.Context(), logger).With(
			slog.String("svixId", r.Header.Get(svix.HeaderID)),
		)

		if missing := svix.MissingHeaders(r.Header); len(missing) > 0 {
			log.Warn("webhook rejected: missing headers", slog.Any("missing", missing))
			writeText(w, http.StatusBadRequest, msgMissingHeaders)
			return
		}

		// The signature covers the bytes on the wire, so nothing may decode the body before this point.
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
		if err != nil {
			log.Warn("webhook rejected: read body", slog.Any("error", err))
			writeText(w, http.StatusBadRequest, msgUnreadableBody)
			return
		}

		if err := verifier.Verify(r.Header, body); err != nil {
			log.Warn("webhook rejected: verification failed", slog.Any("error", err))
			writeText(w, http.StatusBadRequest, msgVerifyFailed)
			return
		}

		evt, err := webhook.Decode(body)
		if err != nil {
			log.Warn("webhook rejected: decode", slog.Any("error", err))
			writeText(w, http.StatusBadRequest, msgMalformedPayload)
			return
		}
		log = log.With(slog.String("eventType", string(evt.Type)))

		// A dropped connection must not abort a projection that is already under way.
		ctx := context.WithoutCancel(r.Context())

		result, err := events.Route(ctx, evt)
		switch {
		case err == nil:
			log.Info("webhook processed", slog.String("clerkId", result.User.ClerkID))
			writeJSON(w, http.StatusOK, result)
		case errors.Is(err, webhook.ErrUnhandledEvent):
			log.Info("webhook ignored: unhandled event type")
			writeText(w, http.StatusOK, msgUnhandledEvent)
		case errors.Is(err, webhook.ErrMalformedEvent):
			log.Warn("webhook rejected: decode data", slog.Any("error", err))
			writeText(w, http.StatusBadRequest, msgMalformedPayload)
		default:
			attrs := []any{slog.Any("error", err)}
			var perr *webhook.ProjectionError
			if errors.As(err, &perr) {
				attrs = append(attrs, slog.String("clerkId", perr.ClerkID))
			}
			log.Error("webhook projection failed", attrs...)
			writeText(w, http.StatusInternalServerError, msgInternalError)
		}
	}
}
