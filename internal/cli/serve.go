package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/commuteplanner/planner/internal/api"
	"github.com/commuteplanner/planner/internal/api/handler"
	"github.com/commuteplanner/planner/internal/core/ports"
	"github.com/commuteplanner/planner/internal/core/service"
	"github.com/commuteplanner/planner/internal/infrastructure/analytics"
	mongostore "github.com/commuteplanner/planner/internal/infrastructure/db/mongo"
	redisstore "github.com/commuteplanner/planner/internal/infrastructure/db/redis"
	"github.com/commuteplanner/planner/internal/infrastructure/queue"
	"github.com/commuteplanner/planner/internal/infrastructure/views"
	"github.com/commuteplanner/planner/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := connectRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	mailer, err := newMailer(cfg, log)
	if err != nil {
		return err
	}
	dispatcher := queue.NewDispatcher(cfg.Email.Workers, mailer, logger.Component("email-queue"))
	dispatcher.Start(ctx)

	var tracker ports.Analytics = analytics.Noop{}
	segment, segmentClient, err := analytics.NewSegment(cfg.Views.SegmentIOKey)
	if err != nil {
		return err
	}
	if segment != nil {
		tracker = segment
		defer segmentClient.Close()
	}

	kratos := newIdentityProvider(cfg)
	directory := mongostore.NewDirectoryRepository(db)
	commuters := mongostore.NewCommuterRepository(db)
	sessions := redisstore.NewSessionCache(rdb, cfg.Security.SessionCacheTTL)
	resetKeys := redisstore.NewResetKeyStore(rdb, cfg.Security.ResetKeyTTL)

	if cfg.Security.HookJWTSecret == "" {
		log.Warn().Msg("HOOK_JWT_SECRET is empty: identity web-hooks will be refused")
	}

	e := api.NewRouter(api.RouterConfig{
		AppURL:        cfg.AppURL,
		AppName:       cfg.Views.AppName,
		SegmentIOKey:  cfg.Views.SegmentIOKey,
		StaticDir:     cfg.Views.StaticDir,
		SessionCookie: cfg.Kratos.SessionCookie,
		KratosBrowser: cfg.Kratos.BrowserURL,
		KratosAdmin:   cfg.Kratos.AdminURL,
		HookSecret:    cfg.Security.HookJWTSecret,
	}, api.Dependencies{
		Identity:     kratos,
		Sessions:     sessions,
		Authorizer:   service.NewAuthorizationService(directory, log),
		Passwords:    service.NewPasswordService(kratos, resetKeys, dispatcher, cfg.AppURL, log),
		Registration: service.NewRegistrationService(commuters, directory, dispatcher, tracker, cfg.AppURL, log),
		Commuters:    commuters,
		Directory:    service.NewDirectoryService(directory, log),
		Mailer:       mailer,
		Renderer:     views.NewRenderer(cfg.Views.Dir),
		Health: map[string]handler.Pinger{
			"mongodb": handler.PingerFunc(func(ctx context.Context) error { return mongostore.Ping(ctx, mongoClient) }),
			"redis":   handler.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("version", version).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = e.Shutdown(shutdownCtx)
	dispatcher.Wait()
	return err
}
