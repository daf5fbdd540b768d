package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/sirpyerre/jwtauth-api/internal/api/handler"
	"github.com/sirpyerre/jwtauth-api/internal/api/middleware"
	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
	"github.com/sirpyerre/jwtauth-api/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers and
// middleware. They are built once by the composition root.
type Dependencies struct {
	Log       zerolog.Logger
	Auth      ports.AuthService
	Tokens    ports.TokenService
	Directory ports.UserDirectory
	// Checks are the readiness probes, keyed by dependency name.
	Checks map[string]handler.Check
	// LoginRate is the sustained login rate allowed per client IP. Zero
	// disables login rate limiting.
	LoginRate  rate.Limit
	LoginBurst int
}

// Routes reachable without an attached user inside guarded groups.
var anonymousRoutes = []string{"/login", "/auth/login", "/users/login"}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.Metrics())
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.Authenticate(deps.Tokens, deps.Directory, deps.Log))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Auth)
	login := loginMiddleware(deps)
	requireUser := middleware.AuthorizeWithConfig(middleware.AuthorizeConfig{
		Skipper: middleware.AllowAnonymous(anonymousRoutes...),
	})

	// --- Auth routes ---
	e.POST("/login", authHandler.Login, login...)
	e.GET("/account", authHandler.Account, requireUser)

	// Guards are attached per route: group-level middleware would also wrap
	// the group's not-found routes and turn unknown paths into 401s.
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login, login...)
	auth.GET("/account", authHandler.Account, requireUser)

	// --- User routes ---
	users := e.Group("/users")
	users.POST("/login", authHandler.Login, login...)
	users.GET("", userHandler.List, middleware.Authorize(domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness: is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// loginMiddleware throttles credential guessing per client IP.
func loginMiddleware(deps Dependencies) []echo.MiddlewareFunc {
	if deps.LoginRate <= 0 {
		return nil
	}
	burst := deps.LoginBurst
	if burst <= 0 {
		burst = 1
	}

	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      deps.LoginRate,
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	tooMany := map[string]string{"message": "Too many requests"}

	return []echo.MiddlewareFunc{echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Forbidden"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			deps.Log.Warn().Str("remote_ip", identifier).Msg("login rate limited")
			return c.JSON(http.StatusTooManyRequests, tooMany)
		},
	})}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
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
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
