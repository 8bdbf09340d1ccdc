package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"guestlist/internal/delivery/http/controllers"
	"guestlist/internal/delivery/http/middleware"
	"guestlist/internal/domain"
)

// RouterConfig carries the controllers and cross-cutting settings the router needs.
type RouterConfig struct {
	Logger             *slog.Logger
	Verifier           domain.TokenVerifier
	AllowedOrigins     []string
	PublicRateLimitRPS float64
	PublicRateBurst    int

	Auth      *controllers.AuthController
	Events    *controllers.EventController
	RSVPs     *controllers.RSVPController
	Tokens    *controllers.TokenController
	Templates *controllers.TemplateController
}

// NewRouter initializes the HTTP router with all application routes.
// Organizer routes require a bearer token with the admin role. The token RSVP
// routes are public and rate limited per client IP.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(cfg.Verifier)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireAdmin(next))
	}
	public := middleware.RateLimit(cfg.PublicRateLimitRPS, cfg.PublicRateBurst)

	// Auth
	mux.HandleFunc("POST /auth/signup", cfg.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)

	// Events
	mux.HandleFunc("POST /events", admin(cfg.Events.CreateEvent))
	mux.HandleFunc("GET /events", admin(cfg.Events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", admin(cfg.Events.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", admin(cfg.Events.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", admin(cfg.Events.DeleteEvent))

	// RSVPs
	mux.HandleFunc("POST /rsvps/{eventID}", auth(cfg.RSVPs.SubmitUserRSVP))
	mux.HandleFunc("POST /rsvps/token/{token}", public(cfg.RSVPs.SubmitTokenRSVP))
	mux.HandleFunc("GET /rsvps/token/{token}/status", public(cfg.RSVPs.GetTokenRSVPStatus))
	mux.HandleFunc("GET /rsvps/event/{eventID}/dietary-stats", admin(cfg.RSVPs.GetDietaryStats))

	// Invitation tokens
	mux.HandleFunc("POST /tokens/{eventID}", admin(cfg.Tokens.CreateToken))
	mux.HandleFunc("GET /tokens/{eventID}", admin(cfg.Tokens.ListInvitees))

	// Email templates
	mux.HandleFunc("POST /templates", admin(cfg.Templates.CreateTemplate))
	mux.HandleFunc("GET /templates", admin(cfg.Templates.ListTemplates))
	mux.HandleFunc("PUT /templates/{templateID}", admin(cfg.Templates.UpdateTemplate))
	mux.HandleFunc("DELETE /templates/{templateID}", admin(cfg.Templates.DeleteTemplate))
	mux.HandleFunc("POST /templates/{templateID}/default", admin(cfg.Templates.SetDefaultTemplate))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return middleware.LoggingMiddleware(cfg.Logger,
		middleware.CORS(cfg.AllowedOrigins, mux))
}
