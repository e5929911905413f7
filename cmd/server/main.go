// Command server runs the NoteMate REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notemate/notemate/internal/api"
	"github.com/notemate/notemate/internal/auth"
	"github.com/notemate/notemate/internal/config"
	"github.com/notemate/notemate/internal/db"
	"github.com/notemate/notemate/internal/email"
	"github.com/notemate/notemate/internal/notes"
	"github.com/notemate/notemate/internal/obs"
	"github.com/notemate/notemate/internal/ratelimit"
	"github.com/notemate/notemate/internal/s3client"
)

func main() {
	obs.Init()
	logger := obs.Pkg("server")

	noEmail, noS3, addr := config.ParseFlags()
	cfg := config.MustLoadConfig(noEmail, noS3, addr)
	cfg.PrintStartupSummary()

	database, err := db.Open(cfg.DatabasePath, cfg.DatabaseKey)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenDuration)
	if err != nil {
		logger.Error("token_service_failed", "error", err)
		os.Exit(1)
	}

	var emailService email.EmailService
	if cfg.NoEmail {
		emailService = email.NewMockEmailService()
	} else {
		emailService = email.NewResendEmailService(cfg.ResendAPIKey, cfg.ResendFromEmail)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storage *s3client.Client
	if cfg.NoS3 {
		var stopMock func()
		storage, stopMock, err = s3client.NewMock(ctx, "notemate-dev")
		if err == nil {
			defer stopMock()
		}
	} else {
		storage, err = s3client.New(ctx, s3client.Config{
			Endpoint:        cfg.AWSEndpointS3,
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretAccessKey,
			BucketName:      cfg.AWSBucketName,
		})
	}
	if err != nil {
		logger.Error("s3_client_failed", "error", err)
		os.Exit(1)
	}

	notesService := notes.NewService(database)
	exporter := notes.NewExporter(notesService, storage, emailService)
	users := auth.NewUserService(database, tokens, emailService)

	limiter := ratelimit.NewRateLimiter(cfg.RateLimitConfig)
	defer limiter.Stop()

	handler := api.NewHandler(users, notesService, exporter)
	router := api.NewRouter(handler, tokens, limiter)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server_failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
}
