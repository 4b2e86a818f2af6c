package sessiongate

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Zero values are filled by
// [DefaultConfig]; an explicit Config passed to [Builder.WithConfig] is
// validated during [Builder.Build].
type Config struct {
	JWT      JWTConfig
	Cache    CacheConfig
	Password PasswordConfig
	Metrics  MetricsConfig
}

// JWTConfig configures the token primitive. HS256 signs with PrivateKey as
// the shared secret; ed25519 needs both halves of the key pair.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// CacheConfig configures the revocation cache keyspace. Prefix is prepended
// to every key, so several deployments can share one Redis.
type CacheConfig struct {
	RedisPrefix string
}

// PasswordConfig carries the argon2id parameters used to verify stored
// password hashes during login.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// MetricsConfig enables the in-process counters exposed through
// [Engine.MetricsSnapshot].
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 10 minute access tokens,
// 10 day refresh tokens, HS256 signing, metrics off.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     10 * time.Minute,
			RefreshTTL:    10 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

// Validate checks the configuration for values Build must refuse.
func (c Config) Validate() error {
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT.AccessTTL must be positive")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT.RefreshTTL must be positive")
	}
	if c.JWT.RefreshTTL < c.JWT.AccessTTL {
		return errors.New("JWT.RefreshTTL must not be shorter than JWT.AccessTTL")
	}
	switch c.JWT.SigningMethod {
	case "hs256", "ed25519":
	default:
		return errors.New("JWT.SigningMethod must be hs256 or ed25519")
	}
	if len(c.JWT.PrivateKey) == 0 {
		return errors.New("JWT.PrivateKey is required")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT.Leeway out of range")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
