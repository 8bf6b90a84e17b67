package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mpetrov/facelike/internal/auth"
	"github.com/mpetrov/facelike/internal/config"
	"github.com/mpetrov/facelike/internal/logger"
	"github.com/mpetrov/facelike/internal/server"
	"github.com/mpetrov/facelike/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	l := logger.New(cfg.LogLevel)

	users, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		l.Fatal("failed to open user store", "driver", cfg.Store.Driver, "error", err)
	}
	defer cleanup()

	tokens := auth.NewTokenService(
		[]byte(cfg.JWT.Secret),
		time.Duration(cfg.JWT.TTLHours)*time.Hour,
		cfg.JWT.Issuer,
		l,
	)
	auther := auth.NewAuthenticator(users, tokens, auth.NewHasher(cfg.Bcrypt.Cost), l)

	srv := server.New(cfg.Addr, auther, l)

	go func() {
		if err := srv.Listen(); err != nil {
			l.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	l.Info("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("error during server shutdown", "error", err)
	}

	l.Info("shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config) (store.UserStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		s, err := store.OpenSQLite(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return store.NewFileStore(cfg.Store.Path), func() {}, nil
	}
}
