package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cris-imc/invitaciones-sub002/pkg/config"
	"github.com/cris-imc/invitaciones-sub002/pkg/database"
	"github.com/cris-imc/invitaciones-sub002/pkg/events"
	"github.com/cris-imc/invitaciones-sub002/pkg/logger"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/handlers"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/render"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/repository"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/service"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/storage"
	"github.com/cris-imc/invitaciones-sub002/services/invitations/internal/wizard"
)

func main() {
	if err := run(); err != nil {
		logger.Error("Invitations service error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	// Connect to event bus; without it the service still serves, events are dropped.
	var bus events.EventBus
	natsBus, err := events.NewNATSEventBus(cfg.NATS.URL, "invitations")
	if err != nil {
		logger.Warn("NATS unavailable, events will not be published", "error", err)
		bus = events.NopBus{}
	} else {
		bus = natsBus
	}
	defer bus.Close()

	uploads, err := storage.New(cfg.Uploads)
	if err != nil {
		return err
	}
	pages, err := render.New()
	if err != nil {
		return err
	}

	// Initialize repositories
	invitationRepo := repository.NewInvitationRepository(pool)
	guestRepo := repository.NewGuestRepository(pool)
	rsvpRepo := repository.NewRSVPRepository(pool)
	albumRepo := repository.NewAlbumRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	rateLimitRepo := repository.NewRateLimitRepository(pool)

	// Initialize handlers
	h := handlers.New(handlers.Deps{
		Invitations: service.NewInvitationService(invitationRepo, guestRepo, rsvpRepo, albumRepo, bus),
		Gate:        service.NewAccessGate(invitationRepo, guestRepo, rsvpRepo, userRepo, bus, cfg),
		Guests:      service.NewGuestService(invitationRepo, guestRepo, cfg),
		RSVPs:       service.NewRSVPService(invitationRepo, rsvpRepo),
		Albums:      service.NewAlbumService(invitationRepo, albumRepo, uploads, bus),
		Auth:        service.NewAuthService(userRepo, rateLimitRepo, cfg),
		Wizard:      wizard.NewStore(cfg.Session),
		Pages:       pages,
		Uploads:     uploads.Handler(),
		Config:      cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting invitations service", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		cleanupRateLimits(gctx, rateLimitRepo)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down invitations service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// cleanupRateLimits drops expired login windows until ctx is done.
func cleanupRateLimits(ctx context.Context, limits repository.RateLimitRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := limits.CleanupExpired(ctx)
			if err != nil {
				logger.Warn("Failed to clean up rate limits", "error", err)
				continue
			}
			logger.Debug("Cleaned up rate limits", "removed", n)
		}
	}
}
