// Command authd serves the session token lifecycle over HTTP:
//
//	POST /api/v1/auth/login          - {"login":..., "password":...} -> token pair
//	POST /api/v1/auth/refresh        - rotates the presented refresh token
//	POST /api/v1/auth/logout         - closes the presenting session
//	POST /api/v1/auth/logout_others  - invalidates all other sessions, returns a fresh pair
//	GET  /api/v1/auth/validate       - 204 when the access token is still usable
//
// All token-bearing endpoints read the credential from "Authorization: Bearer".
// Configuration comes from the environment (optionally via .env):
// AUTHD_ADDR, REDIS_ADDR, JWT_SECRET.
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
	"github.com/redis/go-redis/v9"

	sessiongate "github.com/zeroleaf/sessiongate"
	"github.com/zeroleaf/sessiongate/password"
	"github.com/zeroleaf/sessiongate/userstore"
)

type config struct {
	Addr      string
	RedisAddr string
	JWTSecret string
}

func loadConfig() config {
	_ = godotenv.Load()
	return config{
		Addr:      envDefault("AUTHD_ADDR", ":8000"),
		RedisAddr: envDefault("REDIS_ADDR", "127.0.0.1:6379"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := loadConfig()
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	engineCfg := sessiongate.DefaultConfig()
	engineCfg.JWT.PrivateKey = []byte(cfg.JWTSecret)

	users, err := seedUsers(engineCfg.Password)
	if err != nil {
		logger.Error("seed users", "error", err)
		os.Exit(1)
	}

	engine, err := sessiongate.New().
		WithConfig(engineCfg).
		WithRedis(rdb).
		WithUserStore(users).
		WithLogger(logger).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		logger.Error("engine build", "error", err)
		os.Exit(1)
	}

	e := newRouter(engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("authd listening", "addr", cfg.Addr)
		if err := e.Start(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func newRouter(engine *sessiongate.Engine, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	h := &handlers{engine: engine, log: logger}
	api := e.Group("/api/v1/auth")
	api.POST("/login", h.login)
	api.POST("/refresh", h.refresh)
	api.POST("/logout", h.logout)
	api.POST("/logout_others", h.logoutOthers)
	api.GET("/validate", h.validate)

	return e
}

// seedUsers mirrors the demo accounts: login1/password1 with role1,
// login2/password2 with role2.
func seedUsers(cfg sessiongate.PasswordConfig) (*userstore.Memory, error) {
	hasher, err := password.NewArgon2(password.Config{
		Memory:      cfg.Memory,
		Time:        cfg.Time,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	store := userstore.NewMemory()
	for _, seed := range []struct {
		id, login, pass, role string
	}{
		{"6b9f3a10-0001-4d3a-9f31-000000000001", "login1", "password1", "role1"},
		{"6b9f3a10-0002-4d3a-9f31-000000000002", "login2", "password2", "role2"},
	} {
		hash, err := hasher.Hash(seed.pass)
		if err != nil {
			return nil, err
		}
		store.Put(sessiongate.User{
			ID:           seed.id,
			Login:        seed.login,
			PasswordHash: hash,
			Roles:        []string{seed.role},
		})
	}
	return store, nil
}

type handlers struct {
	engine *sessiongate.Engine
	log    *slog.Logger
}

func (h *handlers) login(c echo.Context) error {
	var req struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}

	pair, err := h.engine.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, sessiongate.ErrInvalidCredentials) {
			return detail(c, http.StatusUnauthorized, "Login failed")
		}
		return h.internal(c, "login", err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *handlers) refresh(c echo.Context) error {
	token, ok := bearer(c)
	if !ok {
		return detail(c, http.StatusUnauthorized, "missing bearer token")
	}
	pair, err := h.engine.Refresh(c.Request().Context(), token)
	if err != nil {
		return h.reject(c, "refresh", err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *handlers) logout(c echo.Context) error {
	token, ok := bearer(c)
	if !ok {
		return detail(c, http.StatusUnauthorized, "missing bearer token")
	}
	if err := h.engine.Logout(c.Request().Context(), token); err != nil {
		return h.reject(c, "logout", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) logoutOthers(c echo.Context) error {
	token, ok := bearer(c)
	if !ok {
		return detail(c, http.StatusUnauthorized, "missing bearer token")
	}
	pair, err := h.engine.LogoutOthers(c.Request().Context(), token)
	if err != nil {
		return h.reject(c, "logout_others", err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *handlers) validate(c echo.Context) error {
	token, ok := bearer(c)
	if !ok {
		return detail(c, http.StatusUnauthorized, "missing bearer token")
	}
	if _, err := h.engine.ValidateAccess(c.Request().Context(), token); err != nil {
		return h.reject(c, "validate", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *handlers) reject(c echo.Context, op string, err error) error {
	if errors.Is(err, sessiongate.ErrTokenInvalid) {
		return detail(c, http.StatusUnauthorized, "invalid token")
	}
	return h.internal(c, op, err)
}

func (h *handlers) internal(c echo.Context, op string, err error) error {
	h.log.ErrorContext(c.Request().Context(), "request failed", "op", op, "error", err)
	return detail(c, http.StatusInternalServerError, "internal error")
}

// detail emits the {"detail": ...} rejection body the downstream validator
// parses; echo's default error serialization uses "message".
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
