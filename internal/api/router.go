package api

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/commuteplanner/planner/internal/api/handler"
	"github.com/commuteplanner/planner/internal/api/middleware"
	"github.com/commuteplanner/planner/internal/core/domain"
	"github.com/commuteplanner/planner/internal/core/ports"
)

const serviceName = "commute-planner"

// RouterConfig holds the settings the HTTP surface needs.
type RouterConfig struct {
	AppURL        string
	AppName       string
	SegmentIOKey  string
	StaticDir     string
	SessionCookie string
	KratosBrowser string
	KratosAdmin   string
	HookSecret    string
}

// Dependencies are the services and adapters the routes are built from.
type Dependencies struct {
	Identity     ports.IdentityProvider
	Sessions     ports.SessionCache
	Authorizer   ports.Authorizer
	Passwords    ports.PasswordService
	Registration ports.RegistrationService
	Commuters    ports.CommuterRepository
	Directory    ports.DirectoryService
	Mailer       ports.Mailer
	Renderer     echo.Renderer
	Health       map[string]handler.Pinger
}

// Route requirements, built once at registration.
var (
	managerGroups = domain.MustGroupSet(false, domain.GroupAdministrator, domain.GroupManager)
	adminGroups   = domain.MustGroupSet(false, domain.GroupAdministrator)
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig, deps Dependencies, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()
	e.Renderer = deps.Renderer

	// --- Global middleware ---
	e.Use(otelecho.Middleware(serviceName))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Session(middleware.SessionConfig{
		CookieName: cfg.SessionCookie,
		Identity:   deps.Identity,
		Cache:      deps.Sessions,
		Log:        log.With().Str("component", "session").Logger(),
	}))

	gateLog := log.With().Str("component", "gate").Logger()
	managerOnly := middleware.Authorize(deps.Authorizer, managerGroups, gateLog)
	adminOnly := middleware.Authorize(deps.Authorizer, adminGroups, gateLog)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Identity, deps.Sessions, deps.Passwords, handler.AuthConfig{
		CookieName: cfg.SessionCookie,
		BrowserURL: cfg.KratosBrowser,
		AppURL:     cfg.AppURL,
	}, log)
	passwordHandler := handler.NewPasswordHandler(deps.Passwords, log)
	hooksHandler := handler.NewHooksHandler(deps.Registration, cfg.KratosAdmin)
	adminHandler := handler.NewAdminHandler(deps.Directory, deps.Mailer)
	commuterHandler := handler.NewCommuterHandler(deps.Commuters)
	viewHandler := handler.NewViewHandler(handler.ViewConfig{AppName: cfg.AppName, SegmentIOKey: cfg.SegmentIOKey})

	// --- Pages ---
	if cfg.StaticDir != "" {
		e.Static("/build", cfg.StaticDir)
	}
	e.GET("/", viewHandler.Planner)
	e.GET("/planner", viewHandler.Planner)
	e.GET("/manager", viewHandler.Manager, managerOnly)
	e.GET("/login", authHandler.Login)
	e.GET("/change-password/:key", viewHandler.ChangePassword)

	// --- Auth routes ---
	e.GET("/api/auth/is-logged-in", authHandler.IsLoggedIn)
	e.GET("/api/auth/login-with-link/:link", authHandler.LoginWithLink)
	e.POST("/api/auth/logout", authHandler.Logout)
	e.POST("/api/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/users/change-password", passwordHandler.ChangePassword)
	e.GET("/api/commuter", commuterHandler.Profile, middleware.AuthenticationRequired(cfg.SessionCookie))

	// --- Identity provider web-hooks ---
	hooks := e.Group("/api/hooks", middleware.HookAuth(cfg.HookSecret))
	hooks.POST("/after-registration", hooksHandler.AfterRegistration)
	hooks.POST("/after-login", hooksHandler.AfterLogin)

	// --- Administration ---
	e.POST("/api/groups", adminHandler.CreateGroups, adminOnly)
	e.GET("/api/emails/:id", adminHandler.EmailInfo, adminOnly)

	// --- Probes and metrics ---
	probes := handler.NewProbeHandler(deps.Health)
	e.GET("/health", probes.Liveness)
	e.GET("/health/ready", probes.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// requestLogger writes one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
