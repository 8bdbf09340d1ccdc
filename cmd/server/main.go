package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"guestlist/config"
	_ "guestlist/docs"
	"guestlist/internal/adapters/auth"
	"guestlist/internal/adapters/email"
	httpdelivery "guestlist/internal/delivery/http"
	"guestlist/internal/delivery/http/controllers"
	"guestlist/internal/repository/postgres"
	"guestlist/internal/services"
)

const serviceTimeout = 5 * time.Second

// @title Guestlist API
// @version 1.0
// @description Event invitation and RSVP management API.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger()
	logger.Info("starting server", "env", cfg.Environment, "port", cfg.Port)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("database connection established")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	tokenRepo := postgres.NewInviteTokenRepository(db)
	rsvpRepo := postgres.NewRSVPRepository(db)
	templateRepo := postgres.NewEmailTemplateRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtCodec := auth.NewJWTCodec(cfg.JWTSecret)

	mailerProvider := "noop"
	if cfg.SESAccessKey != "" && cfg.SESSecretKey != "" {
		mailerProvider = "ses"
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    mailerProvider,
		FromAddress: cfg.SESSender,
		FromName:    "Guestlist",
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKey,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}
	renderer := email.NewTemplateRenderer()

	// Services
	emailSvc := services.NewEmailService(mailer, renderer)
	templateSvc := services.NewTemplateService(templateRepo, userRepo, serviceTimeout)
	userSvc := services.NewUserService(userRepo, tokenRepo, hasher, jwtCodec, cfg.JWTExpiry, logger, serviceTimeout)
	eventSvc := services.NewEventService(eventRepo, serviceTimeout)
	rsvpSvc := services.NewRSVPService(eventRepo, tokenRepo, rsvpRepo, serviceTimeout)
	inviteSvc := services.NewInviteService(
		eventRepo, tokenRepo, rsvpRepo, userRepo,
		templateSvc, emailSvc, logger, cfg.RSVPBaseURL, serviceTimeout,
	)

	// HTTP
	router := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:             logger,
		Verifier:           jwtCodec,
		AllowedOrigins:     cfg.AllowedCORS,
		PublicRateLimitRPS: cfg.PublicRPS,
		PublicRateBurst:    cfg.PublicBurst,

		Auth:      controllers.NewAuthController(logger, userSvc),
		Events:    controllers.NewEventController(logger, eventSvc),
		RSVPs:     controllers.NewRSVPController(logger, rsvpSvc),
		Tokens:    controllers.NewTokenController(logger, inviteSvc),
		Templates: controllers.NewTemplateController(logger, templateSvc),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
