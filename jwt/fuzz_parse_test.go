package jwt

import (
	"testing"
	"time"
)

// FuzzParse exercises the parser with arbitrary token strings. Goal: no
// panics; invalid inputs must be rejected with errors.
func FuzzParse(f *testing.F) {
	m, err := NewManager(Config{
		AccessTTL:     5 * time.Minute,
		RefreshTTL:    time.Hour,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Leeway:        30 * time.Second,
	})
	if err != nil {
		f.Fatal(err)
	}

	access, _, err := m.MintAccess("uid1", "rjti1", []string{"role1"})
	if err != nil {
		f.Fatal(err)
	}
	refresh, _, err := m.MintRefresh("uid1")
	if err != nil {
		f.Fatal(err)
	}

	f.Add(access)
	f.Add(refresh)
	f.Add("")
	f.Add("not.a.jwt")
	f.Add("eyJhbGciOiJIUzI1NiJ9.eyJ0eXBlIjoiYWNjZXNzIn0.invalid")
	f.Add("eyJhbGciOiJub25lIn0.eyJ0eXBlIjoiYWNjZXNzIn0.")

	f.Fuzz(func(t *testing.T, input string) {
		claims, err := m.Parse(input)
		if err != nil {
			return
		}
		if claims == nil {
			t.Fatal("Parse returned nil claims without error")
		}
		if _, err := m.ParseUnverified(input); err != nil {
			t.Fatal("verified token must also decode unverified")
		}
	})
}
