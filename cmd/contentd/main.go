// Command contentd is a downstream service guarded by the remote
// authorization validator: it verifies access tokens locally with the shared
// signing secret, checks roles, and confirms live revocation status with the
// issuing authority on every request.
//
//	GET /api/v1/dummy/content_1 - requires role1
//	GET /api/v1/dummy/content_2 - requires role1 or role2
//
// Configuration: CONTENTD_ADDR, JWT_SECRET, AUTH_VALIDATE_URL (the
// authority's validate endpoint), optionally via .env.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/zeroleaf/sessiongate/jwt"
	"github.com/zeroleaf/sessiongate/validator"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	addr := envDefault("CONTENTD_ADDR", ":8001")
	secret := os.Getenv("JWT_SECRET")
	authorityURL := envDefault("AUTH_VALIDATE_URL", "http://localhost:8000/api/v1/auth/validate")
	if secret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     10 * time.Minute,
		RefreshTTL:    10 * 24 * time.Hour,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(secret),
	})
	if err != nil {
		logger.Error("token manager", "error", err)
		os.Exit(1)
	}

	guard, err := validator.New(validator.Config{
		Tokens:       tokens,
		AuthorityURL: authorityURL,
		Timeout:      5 * time.Second,
		Logger:       logger,
	})
	if err != nil {
		logger.Error("validator", "error", err)
		os.Exit(1)
	}

	e := newRouter(guard)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("contentd listening", "addr", addr, "authority", authorityURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}

func newRouter(guard *validator.Validator) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second

	api := e.Group("/api/v1/dummy")
	api.GET("/content_1", content("Content 1, available only to users with role1."),
		requireRoles(guard, "role1"))
	api.GET("/content_2", content("Content 2, available to users with role1 and/or role2."),
		requireRoles(guard, "role1", "role2"))

	return e
}

func content(data string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"data": data})
	}
}

// requireRoles adapts the validator to echo middleware.
func requireRoles(guard *validator.Validator, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearer(c)
			if !ok {
				return detail(c, http.StatusUnauthorized, "missing bearer token")
			}
			if _, err := guard.Authorize(c.Request().Context(), token, roles); err != nil {
				var authority *validator.AuthorityError
				switch {
				case errors.As(err, &authority):
					if authority.Detail == "" {
						return c.NoContent(authority.StatusCode)
					}
					return detail(c, authority.StatusCode, authority.Detail)
				case errors.Is(err, validator.ErrAccessDenied):
					return detail(c, http.StatusForbidden, "access denied")
				default:
					return detail(c, http.StatusUnauthorized, "invalid token")
				}
			}
			return next(c)
		}
	}
}

// detail mirrors the authority's rejection body shape so a chained
// validator further downstream can still parse it.
func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func bearer(c echo.Context) (string, bool) {
	value := c.Request().Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(value, prefix) || len(value) == len(prefix) {
		return "", false
	}
	return value[len(prefix):], true
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
