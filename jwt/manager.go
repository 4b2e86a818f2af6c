package jwt

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes the two token roles of one session.
type Kind string

const (
	// KindAccess is the short-lived credential presented on every request.
	KindAccess Kind = "access"
	// KindRefresh is the long-lived credential consumed once during rotation.
	KindRefresh Kind = "refresh"
)

// SigningMethod selects the signature algorithm.
type SigningMethod string

const (
	MethodHS256   SigningMethod = "hs256"
	MethodEd25519 SigningMethod = "ed25519"
)

// Claims is the decoded token payload. Subject, ID (jti), IssuedAt, and
// ExpiresAt come from RegisteredClaims and are always set by the mint path.
type Claims struct {
	Kind       Kind     `json:"type"`
	RefreshJTI string   `json:"rjti,omitempty"`
	Roles      []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Config carries the signing material and per-kind lifetimes.
// HS256 uses PrivateKey as the shared secret; ed25519 needs PrivateKey for
// minting and PublicKey for verification.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Manager mints and verifies tokens. Immutable after NewManager.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key")
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	return &Manager{config: cfg}, nil
}

// MintRefresh issues a fresh refresh token for subject and returns both the
// signed string and the decoded claims, so callers can record the jti
// without re-parsing.
func (m *Manager) MintRefresh(subject string) (string, *Claims, error) {
	return m.mint(&Claims{
		Kind:             KindRefresh,
		RegisteredClaims: m.registered(subject, m.config.RefreshTTL),
	})
}

// MintAccess issues a fresh access token referencing its paired refresh
// token's jti and carrying the user's role set at issuance time.
func (m *Manager) MintAccess(subject, refreshJTI string, roles []string) (string, *Claims, error) {
	return m.mint(&Claims{
		Kind:             KindAccess,
		RefreshJTI:       refreshJTI,
		Roles:            roles,
		RegisteredClaims: m.registered(subject, m.config.AccessTTL),
	})
}

func (m *Manager) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    m.config.Issuer,
	}
}

func (m *Manager) mint(claims *Claims) (string, *Claims, error) {
	token := jwt.NewWithClaims(m.method(), claims)
	key, err := m.signKey()
	if err != nil {
		return "", nil, err
	}
	signed, err := token.SignedString(key)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry and decodes the claims. The signing
// algorithm is pinned to the configured method; tokens without a jti or with
// an unknown kind are rejected.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method().Alg()}),
		jwt.WithIssuedAt(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.verifyKey()
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if err := checkShape(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseUnverified decodes the claims without checking the signature. Only for
// callers that already verified the token upstream.
func (m *Manager) ParseUnverified(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	if err := checkShape(claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func checkShape(claims *Claims) error {
	if claims.ID == "" || claims.Subject == "" {
		return jwt.ErrTokenInvalidClaims
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return jwt.ErrTokenInvalidClaims
	}
	switch claims.Kind {
	case KindAccess, KindRefresh:
		return nil
	}
	return jwt.ErrTokenInvalidClaims
}

func (m *Manager) method() jwt.SigningMethod {
	if m.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (m *Manager) signKey() (interface{}, error) {
	if m.config.SigningMethod == MethodEd25519 {
		return parseEdPrivateKey(m.config.PrivateKey)
	}
	return m.config.PrivateKey, nil
}

func (m *Manager) verifyKey() (interface{}, error) {
	if m.config.SigningMethod == MethodEd25519 {
		return parseEdPublicKey(m.config.PublicKey)
	}
	return m.config.PrivateKey, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
