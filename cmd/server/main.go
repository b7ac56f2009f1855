package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"

	"github.com/evently/webhook-service/internal/auth"
	"github.com/evently/webhook-service/internal/config"
	"github.com/evently/webhook-service/internal/httpapi"
	"github.com/evently/webhook-service/internal/logging"
	"github.com/evently/webhook-service/internal/server"
	"github.com/evently/webhook-service/internal/svix"
	"github.com/evently/webhook-service/internal/user"
	"github.com/evently/webhook-service/internal/webhook"
)

const serviceName = "webhook-service"

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName)

	signatures, err := svix.NewVerifier(cfg.WebhookSecret, svix.WithTolerance(cfg.SignatureTolerance))
	if err != nil {
		panic(fmt.Errorf("webhook verifier error: %w", err))
	}

	store, cleanup, err := newStore(ctx, cfg, logger)
	if err != nil {
		panic(fmt.Errorf("user store init error: %w", err))
	}
	defer cleanup()

	projector, err := webhook.NewProjector(store)
	if err != nil {
		panic(fmt.Errorf("projector init error: %w", err))
	}
	events := webhook.NewRouter(projector)

	sessions, err := auth.NewVerifier(auth.Config{
		Mode:     auth.Mode(cfg.Auth.Mode),
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
		Logger:   logger,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}
	gate := auth.DefaultGate()

	router := server.NewRouter(serviceName, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware(sessions))

			httpapi.RegisterWebhookRoutes(r, signatures, events, logger)
			httpapi.RegisterUserRoutes(r, store, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("webhook endpoint ready",
		slog.String("path", httpapi.ClerkWebhookPath),
		slog.String("datastore", cfg.DataStore),
		slog.Duration("tolerance", signatures.Tolerance()),
	)

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (user.Store, func(), error) {
	clock := user.NewSystemClock()
	ids := user.NewUUIDGenerator()

	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return nil, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		cleanup := func() {
			_ = client.Close()
		}
		return user.NewFirestoreStore(client, clock, ids), cleanup, nil

	case config.DataStorePostgres:
		db, err := user.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		if err := user.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		cleanup := func() {
			_ = db.Close()
		}
		return user.NewPostgresStore(db, clock, ids), cleanup, nil

	default:
		logger.Warn("using in-memory user store; data is lost on restart")
		return user.NewMemoryStore(clock, ids), func() {}, nil
	}
}
