package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/client-portal-api/internal/config"
	"github.com/client-portal-api/internal/infrastructure/dynamo"
	"github.com/client-portal-api/internal/infrastructure/identity"
	jwtinfra "github.com/client-portal-api/internal/infrastructure/jwt"
	"github.com/client-portal-api/internal/infrastructure/mail"
	"github.com/client-portal-api/internal/infrastructure/sns"
	transporthttp "github.com/client-portal-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.AppEnv == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if the public key is missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Warn().Err(err).Msg("JWT provider not available")
	}

	mailer := mail.NewMailer(cfg)

	// SNS SMS sender (optional — without it, phone deliveries fail with a
	// delivery error while email issuance keeps working).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Warn().Err(err).Msg("SNS sender not available")
	}

	deps := &transporthttp.Deps{
		ClientRepo:  dynamo.NewClientRepo(dynamoClient, cfg.DynamoTables.Clients),
		CodeRepo:    dynamo.NewCodeRepo(dynamoClient, cfg.DynamoTables.VerificationCodes),
		TicketRepo:  dynamo.NewTicketRepo(dynamoClient, cfg.DynamoTables.Tickets),
		Mailer:      mailer,
		SMSSender:   smsSender,
		Platform:    identity.NewClient(cfg),
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Str("env", cfg.AppEnv).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}
