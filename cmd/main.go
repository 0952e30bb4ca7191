package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/cafeteria/config"
	"github.com/ray-remotestate/cafeteria/database"
	"github.com/ray-remotestate/cafeteria/database/dbhelper"
	"github.com/ray-remotestate/cafeteria/handlers"
	"github.com/ray-remotestate/cafeteria/metrics"
	"github.com/ray-remotestate/cafeteria/server"
	"github.com/ray-remotestate/cafeteria/services"
	"github.com/ray-remotestate/cafeteria/utils"
)

const startupTimeout = 30 * time.Second

func main() {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config, error: %v", err)
	}
	if err := cfg.SetupLogger(); err != nil {
		logrus.Fatalf("failed to configure logger, error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	db, err := database.ConnectAndMigrate(ctx, cfg.Database)
	if err != nil {
		cancel()
		logrus.Panicf("failed to initialize database, error: %v", err)
	}
	logrus.Println("migration is successful")

	if cfg.AdminUsername != "" {
		if err := bootstrapAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			cancel()
			logrus.Panicf("failed to bootstrap admin user, error: %v", err)
		}
		logrus.Infof("admin user %q is ready", cfg.AdminUsername)
	}
	cancel()

	store := database.NewStore(db)
	h := &handlers.Handler{
		DB:            db,
		Orders:        services.NewOrderService(store),
		AdminRequests: services.NewAdminRequestService(store),
		Metrics:       metrics.New(),
		Session: handlers.SessionConfig{
			Secret: cfg.SecretKey,
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
		},
	}

	srv := server.SetupRoutes(h, server.Options{
		Addr:           cfg.Port,
		Secret:         cfg.SecretKey,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	go func() {
		if err := srv.Run(); err != nil {
			logrus.WithError(err).Error("failed to run server")
			done <- syscall.SIGTERM
		}
	}()
	logrus.Infof("server is listening on %s", cfg.Port)

	<-done

	logrus.Info("shutting down...")
	if err := srv.Shutdown(cfg.ShutdownTimeout); err != nil {
		logrus.WithError(err).Error("failed to gracefully shutdown server")
	}
	if err := database.Shutdown(db); err != nil {
		logrus.WithError(err).Error("failed to close database connection!")
	}

	logrus.Info("system is shut ..zzz")
}

func bootstrapAdmin(ctx context.Context, db *sql.DB, username, password string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	return dbhelper.EnsureAdmin(ctx, db, username, hashed)
}
