package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moodwall/internal/config"
	"moodwall/internal/db"
	"moodwall/internal/handlers"
	"moodwall/internal/services"
	"moodwall/internal/session"
	"moodwall/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if n, err := db.SeedSupportMessages(ctx, st); err != nil {
		logger.Warn("support message seed failed", zap.Error(err))
	} else {
		logger.Info("support messages seeded", zap.Int("count", n))
	}

	router, err := buildRouter(cfg, st, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutdown initiated")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// openStore connects to Postgres and migrates it, or falls back to the
// in-memory store when DATABASE_URL is unset.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; using in-memory store, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
	dbConn, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(ctx, dbConn); err != nil {
		dbConn.Close()
		return nil, nil, err
	}
	return store.NewPostgres(dbConn), func() { dbConn.Close() }, nil
}

func buildRouter(cfg config.Config, st store.Store, logger *zap.Logger) (http.Handler, error) {
	enc, err := services.NewEncryptionService(cfg.EncryptionKey, cfg.BlindIndexKey)
	if err != nil {
		return nil, err
	}
	checkins := services.NewCheckinService(st, enc, logger.Named("checkins"))
	return handlers.NewRouter(handlers.Deps{
		Identity:    services.NewIdentityService(st, enc, logger.Named("identity")),
		Checkins:    checkins,
		Support:     services.NewSupportService(st, logger.Named("support")),
		Wall:        services.NewWallService(st, logger.Named("wall")),
		Dashboard:   services.NewDashboardService(checkins, logger.Named("dashboard")),
		Admin:       services.NewAdminService(st),
		Tokens:      session.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Location:    cfg.Location,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
	}), nil
}
