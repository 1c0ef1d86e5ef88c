package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/handler"
	"github.com/supportdesk/support-system/internal/api/middleware"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// Deps is everything the router needs. Registerer and Gatherer default to the
// prometheus globals.
type Deps struct {
	Tokens       middleware.TokenValidator
	Auth         ports.AuthService
	Clients      ports.ClientService
	Tickets      ports.TicketService
	Portabilites ports.PortabiliteService
	Echanges     ports.EchangeService
	Checks       map[string]handler.Check
	CORSOrigins  []string
	Registerer   prometheus.Registerer
	Gatherer     prometheus.Gatherer
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "supportdesk",
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper:    skipProbes,
	}))
	e.Use(renderErrors)

	auth := middleware.Auth(d.Tokens)
	agentOnly := middleware.RBAC(domain.RoleAgent)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth", authHandler.Login)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout, auth)
	e.GET("/auth/me", authHandler.Me, auth)

	principals := e.Group("/principals", auth, agentOnly)
	principals.GET("", authHandler.ListPrincipals)
	principals.POST("", authHandler.CreatePrincipal)

	// --- Clients ---
	clientHandler := handler.NewClientHandler(d.Clients)
	clients := e.Group("/clients", auth)
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.POST("", clientHandler.Create)
	clients.PUT("/:id", clientHandler.Update)
	clients.DELETE("/:id", clientHandler.Delete)

	// --- Tickets ---
	ticketHandler := handler.NewTicketHandler(d.Tickets)
	tickets := e.Group("/tickets", auth)
	tickets.GET("", ticketHandler.List)
	tickets.POST("", ticketHandler.Create)
	tickets.GET("/:id", ticketHandler.Get)
	tickets.PUT("/:id", ticketHandler.Update)

	// --- Portabilites ---
	portabiliteHandler := handler.NewPortabiliteHandler(d.Portabilites)
	portabilites := e.Group("/portabilites", auth)
	portabilites.GET("", portabiliteHandler.List)
	portabilites.POST("", portabiliteHandler.Create)
	portabilites.GET("/:id", portabiliteHandler.Get)
	portabilites.PUT("/:id", portabiliteHandler.Update)
	portabilites.DELETE("/:id", portabiliteHandler.Delete)

	// --- Comment threads ---
	for prefix, thread := range map[string]domain.Thread{
		"/ticket-echanges":      domain.ThreadTicket,
		"/portabilite-echanges": domain.ThreadPortabilite,
	} {
		h := handler.NewEchangeHandler(d.Echanges, thread)
		g := e.Group(prefix, auth)
		g.GET("", h.List)
		g.POST("", h.Create)
		g.DELETE("/:id", h.Delete)
	}

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))

	return e
}

func skipProbes(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health")
}

// renderErrors writes handler errors before the metrics and logging
// middleware look at the response, so both see the final status code.
func renderErrors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := next(c); err != nil {
			c.Error(err)
		}
		return nil
	}
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		Skipper:      skipProbes,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
