package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"winetasting/internal/client"
	"winetasting/internal/config"
	"winetasting/internal/handlers"
	"winetasting/internal/live"
	"winetasting/internal/services"
	"winetasting/internal/web"
)

const janitorInterval = 10 * time.Minute

func serve(ctx context.Context, cfg *config.Config) error {
	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Initialize the API client and the Tournament Service
	api := client.New(cfg.APIURL, cfg.APITimeout)
	tournamentService := services.NewTournamentService(api)

	// 2. Load HTML templates and static assets from the embedded filesystem.
	templates, err := web.Templates()
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}
	assets, err := web.Assets()
	if err != nil {
		return fmt.Errorf("failed to create assets sub-filesystem: %w", err)
	}

	// 3. Start the live refresh hub
	hub := live.NewHub(api, cfg.RefreshInterval)
	go hub.Run(ctx)

	// 4. Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(tournamentService, templates, hub, cfg.TotalWines, releaseVersion)

	// 5. Set up the Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Verbose {
		r.Use(gin.Logger())
	}
	r.Use(handlers.SecurityHeaders(cfg.Scheme() == "https"))
	r.StaticFS("/assets", http.FS(assets))

	// 6. Register public routes (before middleware)
	httpHandler.RegisterPublicRoutes(r)

	// 7. Group routes that require tenant identification and apply middleware
	tenantRoutes := r.Group("/")
	tenantRoutes.Use(httpHandler.TenantMiddleware())
	httpHandler.RegisterTenantRoutes(tenantRoutes)

	// 8. Start the background janitor to clean up inactive sessions
	go runJanitor(ctx, tournamentService, cfg.SessionTimeout)

	// 9. Run the server
	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
		Handler:           r,
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s://%s/ (api: %s)", cfg.Scheme(), srv.Addr, cfg.APIURL)

		var err error
		if cfg.Scheme() == "https" {
			err = srv.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runJanitor(ctx context.Context, tournamentService *services.TournamentService, maxIdle time.Duration) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tournamentService.CleanUpInactiveSessions(maxIdle)
			logger.Info("Performed cleanup of inactive sessions.")
		}
	}
}
