package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func withClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "s3cret")

	token, err := SignJWT(Claims{Sub: "user-1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "user-1" || claims.Email != "ada@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp-claims.Iat != int64(defaultTTL/time.Second) {
		t.Fatalf("unexpected ttl: %d", claims.Exp-claims.Iat)
	}
}

func TestVerifyRejects(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "s3cret")

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, issued)
	valid, err := SignJWT(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parts := strings.Split(valid, ".")
	noneHeader := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	tests := []struct {
		name  string
		token string
		at    time.Time
		want  error
	}{
		{name: "malformed", token: "abc", at: issued, want: ErrInvalidToken},
		{name: "tampered payload", token: parts[0] + "." + parts[0] + "." + parts[2], at: issued, want: ErrInvalidToken},
		{name: "swapped header", token: noneHeader + "." + parts[1] + "." + parts[2], at: issued, want: ErrInvalidToken},
		{name: "expired", token: valid, at: issued.Add(25 * time.Hour), want: ErrExpiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withClock(t, tt.at)
			if _, err := VerifyJWT(tt.token); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExpiredIsInvalid(t *testing.T) {
	if !errors.Is(ErrExpiredToken, ErrInvalidToken) {
		t.Fatalf("expired tokens must match ErrInvalidToken")
	}
}

func TestSecretRequiredInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{Sub: "user-1"}); !errors.Is(err, errMissingSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}
}
