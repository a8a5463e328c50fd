package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/splax/placefinder/internal/geocode"
	httpx "github.com/splax/placefinder/internal/http"
	"github.com/splax/placefinder/internal/repository/memory"
	"github.com/splax/placefinder/internal/service/auth"
	"github.com/splax/placefinder/internal/service/search"
	"github.com/splax/placefinder/internal/wiki"
	"github.com/splax/placefinder/pkg/config"
	"github.com/splax/placefinder/pkg/crypto"
	"github.com/splax/placefinder/pkg/logger"
)

func main() {
	cfg := config.LoadAPIConfig()
	log := logger.New("api", slog.LevelInfo)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is not configured")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The admin account is the only identity; seed it before serving so no
	// request ever races a lazy initialization.
	passwordHash, err := crypto.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Error("failed to hash admin password", "error", err)
		os.Exit(1)
	}
	users := memory.NewStore(cfg.AdminEmail, cfg.AdminName, passwordHash)

	geoClient := geocode.NewClient(cfg.NominatimURL, cfg.UserAgent, cfg.UpstreamTimeout, cfg.GeocodeRate)
	wikiClient := wiki.NewClient(cfg.WikipediaURL, cfg.WikidataURL, cfg.UserAgent, cfg.UpstreamTimeout)

	authSvc := auth.New(users, log, cfg)
	searchSvc := search.New(geoClient, wikiClient, log, cfg)

	router := httpx.NewRouter(log, authSvc, searchSvc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
