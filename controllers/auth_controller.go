package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/middleware"
	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// AuthController handles registration, login, token refresh and profile
// management.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a new account.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Email    string `json:"email" binding:"required,email"`
		FullName string `json:"full_name" binding:"required,min=1,max=128"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := a.db.Where("username = ? OR email = ?", username, email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40910, "username or email already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to hash password")
		return
	}

	user := models.User{
		Username:     username,
		Email:        email,
		FullName:     utils.Sanitize(strings.TrimSpace(req.FullName)),
		PasswordHash: hash,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create user")
		return
	}

	utils.Success(ctx, gin.H{"user": user.Public()})
}

// Login verifies credentials and issues access + refresh tokens, both as
// HttpOnly cookies and in the body for non-browser clients.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid request payload")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	var user models.User
	if err := a.db.Where("username = ? OR email = ?", username, username).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid credentials")
		return
	}

	access, err := utils.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to issue token")
		return
	}
	refresh, err := utils.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to issue token")
		return
	}

	// Only a digest of the refresh token is stored.
	_ = a.db.Model(&user).UpdateColumn("refresh_token_hash", utils.HashToken(refresh)).Error

	a.setAuthCookies(ctx, access, refresh)

	utils.Success(ctx, gin.H{
		"user":          user.Public(),
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// RefreshToken exchanges a valid refresh token for a fresh access token.
func (a *AuthController) RefreshToken(ctx *gin.Context) {
	token, err := ctx.Cookie(middleware.RefreshTokenCookie)
	if err != nil || token == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40107, "refresh token missing")
			return
		}
		token = req.RefreshToken
	}

	claims, err := utils.ParseRefreshToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "invalid refresh token")
		return
	}

	var user models.User
	if err := a.db.First(&user, claims.UserID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "invalid refresh token")
		return
	}
	if user.RefreshTokenHash == "" || user.RefreshTokenHash != utils.HashToken(token) {
		utils.Error(ctx, http.StatusUnauthorized, 40109, "refresh token revoked")
		return
	}

	access, err := utils.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to issue token")
		return
	}

	cfg := config.Get()
	ctx.SetCookie(middleware.AccessTokenCookie, access, cfg.AccessTokenTTLMinutes*60, "/", "", false, true)
	utils.Success(ctx, gin.H{"access_token": access})
}

// Logout blacklists the current access token, clears the stored refresh
// token and expires the auth cookies.
func (a *AuthController) Logout(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if token, err := ctx.Cookie(middleware.AccessTokenCookie); err == nil && token != "" {
		if claims, perr := utils.ParseToken(token); perr == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	} else if auth := ctx.GetHeader("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 {
			if claims, perr := utils.ParseToken(strings.TrimSpace(parts[1])); perr == nil && claims.ExpiresAt != nil {
				utils.BlacklistToken(strings.TrimSpace(parts[1]), claims.ExpiresAt.Time)
			}
		}
	}

	_ = a.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("refresh_token_hash", "").Error

	ctx.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	ctx.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", false, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's own record.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// ChangePassword verifies the old password before replacing it.
func (a *AuthController) ChangePassword(ctx *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.OldPassword) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "old password incorrect")
		return
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to hash password")
		return
	}
	if err := a.db.Model(&user).UpdateColumn("password_hash", hash).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50015, "failed to update password")
		return
	}
	utils.Success(ctx, gin.H{"message": "password changed"})
}

// UpdateProfile changes the display name and image URLs. The images live on
// the external storage collaborator; only URLs are accepted here.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var req struct {
		FullName      string `json:"full_name"`
		AvatarURL     string `json:"avatar_url"`
		CoverImageURL string `json:"cover_image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	updates := map[string]interface{}{}
	if name := utils.Sanitize(strings.TrimSpace(req.FullName)); name != "" {
		updates["full_name"] = name
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	if req.CoverImageURL != "" {
		updates["cover_image_url"] = req.CoverImageURL
	}
	if len(updates) == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40014, "nothing to update")
		return
	}

	if err := a.db.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50016, "failed to update profile")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50017, "failed to load profile")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// GetChannelProfile returns the public channel page for a username:
// profile, subscriber counts and, for an authenticated caller, whether they
// are subscribed.
func (a *AuthController) GetChannelProfile(ctx *gin.Context) {
	username := strings.ToLower(strings.TrimSpace(ctx.Param("username")))
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40015, "missing username")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "channel not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50018, "failed to load channel")
		return
	}

	var subscriberCount int64
	_ = a.db.Model(&models.Subscription{}).Where("channel_id = ?", user.ID).Count(&subscriberCount).Error
	var subscribedToCount int64
	_ = a.db.Model(&models.Subscription{}).Where("subscriber_id = ?", user.ID).Count(&subscribedToCount).Error
	var videoCount int64
	_ = a.db.Model(&models.Video{}).Where("user_id = ? AND is_published = ?", user.ID, true).Count(&videoCount).Error

	isSubscribed := false
	if viewerID := getOptionalUserID(ctx); viewerID != nil {
		var n int64
		_ = a.db.Model(&models.Subscription{}).
			Where("subscriber_id = ? AND channel_id = ?", *viewerID, user.ID).
			Count(&n).Error
		isSubscribed = n > 0
	}

	utils.Success(ctx, gin.H{
		"channel": gin.H{
			"id":              user.ID,
			"username":        user.Username,
			"full_name":       user.FullName,
			"avatar_url":      user.AvatarURL,
			"cover_image_url": user.CoverImageURL,
			"created_at":      user.CreatedAt,
		},
		"subscriber_count":    subscriberCount,
		"subscribed_to_count": subscribedToCount,
		"video_count":         videoCount,
		"is_subscribed":       isSubscribed,
	})
}

func (a *AuthController) setAuthCookies(ctx *gin.Context, access, refresh string) {
	cfg := config.Get()
	ctx.SetCookie(middleware.AccessTokenCookie, access, cfg.AccessTokenTTLMinutes*60, "/", "", false, true)
	ctx.SetCookie(middleware.RefreshTokenCookie, refresh, cfg.RefreshTokenTTLHours*3600, "/", "", false, true)
}
