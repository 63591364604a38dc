package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darshakvaddoriya6/youtube-backend/config"
)

const (
	// TokenKindAccess marks short-lived tokens accepted by AuthRequired.
	TokenKindAccess = "access"
	// TokenKindRefresh marks long-lived tokens accepted only by the refresh endpoint.
	TokenKindRefresh = "refresh"
)

// Claims defines JWT claims used in the application.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a short-lived access token for the user.
func GenerateAccessToken(userID uint, username string) (string, error) {
	cfg := config.Get()
	ttl := time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute
	return generateToken(userID, username, TokenKindAccess, ttl)
}

// GenerateRefreshToken issues a long-lived refresh token for the user.
func GenerateRefreshToken(userID uint, username string) (string, error) {
	cfg := config.Get()
	ttl := time.Duration(cfg.RefreshTokenTTLHours) * time.Hour
	return generateToken(userID, username, TokenKindRefresh, ttl)
}

func generateToken(userID uint, username, kind string, duration time.Duration) (string, error) {
	cfg := config.Get()

	claims := Claims{
		UserID:   userID,
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ParseAccessToken validates a token and rejects anything but an access token.
func ParseAccessToken(tokenStr string) (*Claims, error) {
	claims, err := ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	// Tokens minted before the kind claim existed are treated as access tokens.
	if claims.Kind != "" && claims.Kind != TokenKindAccess {
		return nil, errors.New("not an access token")
	}
	return claims, nil
}

// ParseRefreshToken validates a token and rejects anything but a refresh token.
func ParseRefreshToken(tokenStr string) (*Claims, error) {
	claims, err := ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.Kind != TokenKindRefresh {
		return nil, errors.New("not a refresh token")
	}
	return claims, nil
}
