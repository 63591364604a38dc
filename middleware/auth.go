package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// AccessTokenCookie is the cookie carrying the access token.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie is the cookie carrying the refresh token.
	RefreshTokenCookie = "refresh_token"
)

// extractToken pulls the access token from the auth cookie or, failing that,
// from a Bearer Authorization header.
func extractToken(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

// AuthOptional resolves the viewer identity when a valid token is present and
// continues anonymously otherwise. Used by endpoints whose behavior differs
// for authenticated viewers but which stay public, like view admission.
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString := extractToken(ctx)
		if tokenString == "" || utils.IsTokenBlacklisted(tokenString) {
			ctx.Next()
			return
		}
		claims, err := utils.ParseAccessToken(tokenString)
		if err != nil {
			// Invalid token on a public endpoint: treat as anonymous
			ctx.Next()
			return
		}
		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}
