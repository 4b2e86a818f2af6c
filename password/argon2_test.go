package password

import (
	"strings"
	"testing"
)

func newTestHasher(t *testing.T) *Argon2 {
	t.Helper()

	a, err := NewArgon2(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return a
}

func TestHashAndVerify(t *testing.T) {
	a := newTestHasher(t)

	encoded, err := a.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := a.Verify("correct-horse-battery", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("correct password must verify")
	}

	ok, err = a.Verify("wrong-password", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestHashesAreSalted(t *testing.T) {
	a := newTestHasher(t)

	first, err := a.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := a.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of one password must differ")
	}
}

func TestVerifyUsesEmbeddedParameters(t *testing.T) {
	heavy, err := NewArgon2(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	encoded, err := heavy.Hash("migrating-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// A verifier configured with different costs still matches, because the
	// costs travel inside the PHC string.
	light := newTestHasher(t)
	ok, err := light.Verify("migrating-password", encoded)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("verification must honor the hash's own parameters")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	a := newTestHasher(t)
	if _, err := a.Hash("short"); err == nil {
		t.Fatal("short password must be rejected")
	}
}

func TestVerifyRejectsMalformedHashes(t *testing.T) {
	a := newTestHasher(t)

	cases := map[string]string{
		"empty":           "",
		"wrong algorithm": "$scrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA==",
		"bad version":     "$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA==",
		"missing params":  "$argon2id$v=19$m=8192$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA==",
		"bad base64":      "$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA==",
	}
	for name, encoded := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := a.Verify("whatever-password", encoded); err == nil {
				t.Fatal("malformed hash must error")
			}
		})
	}
}

func TestNewArgon2EnforcesMinimums(t *testing.T) {
	cases := map[string]Config{
		"low memory": {Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		"zero time": {Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		"short salt": {Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32},
		"short key": {Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
		"no lanes": {Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewArgon2(cfg); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}
