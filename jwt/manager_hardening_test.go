package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func newEdKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate ed25519 key: %v", err)
	}
	return pub, priv
}

func claimsAt(now time.Time) *Claims {
	return &Claims{
		Kind: KindAccess,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "user-1",
			ID:        "jti-1",
			IssuedAt:  gojwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: gojwt.NewNumericDate(now.Add(time.Minute)),
		},
	}
}

func TestParseRejectsAlgNone(t *testing.T) {
	m := newTestManager(t)

	tok := gojwt.NewWithClaims(gojwt.SigningMethodNone, claimsAt(time.Now()))
	unsigned, err := tok.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Parse(unsigned); err == nil {
		t.Fatal("alg=none token must be rejected")
	}
}

func TestParseRejectsAlgorithmConfusion(t *testing.T) {
	pub, priv := newEdKeys(t)
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	// An attacker who knows the public key signs an HS256 token with it as
	// the HMAC secret. The pinned algorithm must refuse it.
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claimsAt(time.Now()))
	forged, err := tok.SignedString([]byte(pub))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := m.Parse(forged); err == nil {
		t.Fatal("cross-algorithm token must be rejected")
	}
}

func TestParseHonorsLeeway(t *testing.T) {
	m, err := NewManager(Config{
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    testSecret,
		Leeway:        30 * time.Second,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	now := time.Now()

	within := claimsAt(now)
	within.ExpiresAt = gojwt.NewNumericDate(now.Add(-15 * time.Second))
	if _, err := m.Parse(signRaw(t, within, testSecret)); err != nil {
		t.Fatalf("token within leeway must parse: %v", err)
	}

	beyond := claimsAt(now)
	beyond.ExpiresAt = gojwt.NewNumericDate(now.Add(-2 * time.Minute))
	if _, err := m.Parse(signRaw(t, beyond, testSecret)); err == nil {
		t.Fatal("token beyond leeway must fail")
	}
}
