package utils

import (
	"testing"

	"github.com/darshakvaddoriya6/youtube-backend/config"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	config.SetForTesting(config.AppConfig{
		JWTSecret:             "unit-test-secret",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  240,
	})
}

func TestAccessTokenRoundTrip(t *testing.T) {
	setTestConfig(t)

	token, err := GenerateAccessToken(42, "alice")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}

	claims, err := ParseAccessToken(token)
	if err != nil {
		t.Fatalf("failed to parse access token: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Fatalf("claims mismatch: id=%d user=%s", claims.UserID, claims.Username)
	}
	if claims.Kind != TokenKindAccess {
		t.Fatalf("kind = %q, want %q", claims.Kind, TokenKindAccess)
	}
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	setTestConfig(t)

	refresh, err := GenerateRefreshToken(7, "bob")
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}
	if _, err := ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token accepted as access token")
	}

	access, err := GenerateAccessToken(7, "bob")
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	if _, err := ParseRefreshToken(access); err == nil {
		t.Fatal("access token accepted as refresh token")
	}
}

func TestParseRejectsForgedSignature(t *testing.T) {
	setTestConfig(t)
	token, err := GenerateAccessToken(1, "carol")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	config.SetForTesting(config.AppConfig{
		JWTSecret:             "a-different-secret",
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  240,
	})
	if _, err := ParseToken(token); err == nil {
		t.Fatal("token from another secret was accepted")
	}
}

func TestHashTokenIsStable(t *testing.T) {
	a := HashToken("some-refresh-token")
	b := HashToken("some-refresh-token")
	if a != b {
		t.Fatal("same input hashed to different values")
	}
	if a == HashToken("another-token") {
		t.Fatal("different inputs hashed to the same value")
	}
	if len(a) != 64 {
		t.Fatalf("hash length %d, want 64 hex chars", len(a))
	}
}
