package backend_test

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_agency/internal/adapters/backend"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

// raw builds a token from literal header and payload JSON with no signature.
func raw(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + "."
}

func TestIsExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	cases := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", sign(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), false},
		{"past exp", sign(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), true},
		{"exp equals now", sign(t, jwt.MapClaims{"exp": now.Unix()}), true},
		{"no exp", sign(t, jwt.MapClaims{"sub": "998901234567"}), true},
		{"empty", "", true},
		{"garbage", "not-a-token", true},
		{"bad payload", "eyJhbGciOiJIUzI1NiJ9.%%%%.sig", true},
		{"header without alg", raw(`{"typ":"JWT"}`, fmt.Sprintf(`{"exp":%d}`, now.Add(time.Hour).Unix())), false},
		{"header not json", "bm9wZQ." + base64.RawURLEncoding.EncodeToString([]byte(fmt.Sprintf(`{"exp":%d}`, now.Add(time.Hour).Unix()))) + ".x", false},
		{"two segments", "eyJhbGciOiJIUzI1NiJ9.e30", true},
		{"payload not json", raw(`{}`, `exp`), true},
	}
	for _, c := range cases {
		if got := backend.IsExpired(c.token, now); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}
