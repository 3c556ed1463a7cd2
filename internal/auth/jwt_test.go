package auth

import (
	"testing"
	"time"

	"claims-platform/internal/config"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(now, Actor{ID: "user-1", Nombre: "Ana Pérez", Area: "Soporte", Rol: "agente"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected token strings")
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(1*time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || claims.Nombre != "Ana Pérez" || claims.Rol != "agente" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Area != "Soporte" {
		t.Fatalf("expected area carried, got %q", claims.Area)
	}
}

// Verification must run entirely on the caller-provided clock; the wall
// clock never decides whether a token is live.
func TestVerifyUsesProvidedClock(t *testing.T) {
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "secret",
		JWTIssuer:       "issuer",
		JWTAudience:     "aud",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}

	issued := time.Unix(1700000000, 0).UTC()
	pair, err := m.IssuePair(issued, Actor{ID: "user-1", Nombre: "Ana Pérez", Rol: "agente"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Live relative to the provided clock, long expired on the wall clock.
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, issued.Add(time.Minute)); err != nil {
		t.Fatalf("verify at issue time: %v", err)
	}

	// Expired relative to the provided clock.
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, issued.Add(48*time.Hour)); err == nil {
		t.Fatalf("expected expiry against provided clock")
	}
}

func TestVerifyRejectsWrongTokenType(t *testing.T) {
	m, _ := NewManager(config.AuthConfig{JWTSecret: "secret", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour})
	p, err := m.IssuePair(time.Now(), Actor{ID: "u", Nombre: "n", Rol: "agente"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(p.RefreshToken, TokenTypeAccess, time.Now()); err == nil {
		t.Fatalf("expected token_type mismatch")
	}
}
