package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// PlaylistController manages user-owned playlists.
type PlaylistController struct {
	db *gorm.DB
}

// NewPlaylistController creates a new PlaylistController instance.
func NewPlaylistController(db *gorm.DB) *PlaylistController {
	return &PlaylistController{db: db}
}

// CreatePlaylist creates an empty playlist for the caller.
func (p *PlaylistController) CreatePlaylist(ctx *gin.Context) {
	var req struct {
		Name         string `json:"name" binding:"required,min=1"`
		Description  string `json:"description"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	playlist := models.Playlist{
		UserID:       userID,
		Name:         utils.Sanitize(strings.TrimSpace(req.Name)),
		Description:  utils.Sanitize(req.Description),
		ThumbnailURL: req.ThumbnailURL,
	}
	if playlist.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40061, "name cannot be empty")
		return
	}
	if err := p.db.Create(&playlist).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to create playlist")
		return
	}
	utils.Success(ctx, gin.H{"playlist": playlist})
}

// ListUserPlaylists returns a user's playlists (public).
func (p *PlaylistController) ListUserPlaylists(ctx *gin.Context) {
	ownerID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40062, "invalid user id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := p.db.Model(&models.Playlist{}).Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to count playlists")
		return
	}

	var playlists []models.Playlist
	if err := p.db.Where("user_id = ?", ownerID).Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&playlists).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50092, "failed to list playlists")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      playlists,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// GetPlaylist returns a playlist with its videos in order.
func (p *PlaylistController) GetPlaylist(ctx *gin.Context) {
	playlistID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40063, "invalid playlist id")
		return
	}

	var playlist models.Playlist
	if err := p.db.
		Preload("Entries", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Entries.Video").
		Preload("Entries.Video.User").
		First(&playlist, playlistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40460, "playlist not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50093, "failed to load playlist")
		return
	}

	utils.Success(ctx, gin.H{"playlist": playlist})
}

// AddVideo appends a video to the playlist. Owner only; duplicates rejected.
func (p *PlaylistController) AddVideo(ctx *gin.Context) {
	playlist, ok := p.loadOwnedPlaylist(ctx)
	if !ok {
		return
	}
	videoID, okID := parseUintParam(ctx, "videoId")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40064, "invalid video id")
		return
	}

	var video models.Video
	if err := p.db.Select("id").First(&video, videoID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40461, "video not found")
		return
	}

	var maxPos int64
	_ = p.db.Model(&models.PlaylistVideo{}).Where("playlist_id = ?", playlist.ID).
		Select("COALESCE(MAX(position), -1)").Scan(&maxPos).Error

	entry := models.PlaylistVideo{
		PlaylistID: playlist.ID,
		VideoID:    videoID,
		Position:   int(maxPos) + 1,
	}
	if err := p.db.Create(&entry).Error; err != nil {
		if isDuplicateKey(err) {
			utils.Error(ctx, http.StatusConflict, 40960, "video already in playlist")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50094, "failed to add video")
		return
	}
	utils.Success(ctx, gin.H{"entry": entry})
}

// RemoveVideo drops a video from the playlist. Owner only.
func (p *PlaylistController) RemoveVideo(ctx *gin.Context) {
	playlist, ok := p.loadOwnedPlaylist(ctx)
	if !ok {
		return
	}
	videoID, okID := parseUintParam(ctx, "videoId")
	if !okID {
		utils.Error(ctx, http.StatusBadRequest, 40065, "invalid video id")
		return
	}

	res := p.db.Where("playlist_id = ? AND video_id = ?", playlist.ID, videoID).
		Delete(&models.PlaylistVideo{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50095, "failed to remove video")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40462, "video not in playlist")
		return
	}
	utils.Success(ctx, gin.H{"message": "video removed"})
}

// UpdatePlaylist edits name, description or thumbnail. Owner only.
func (p *PlaylistController) UpdatePlaylist(ctx *gin.Context) {
	var req struct {
		Name         string `json:"name"`
		Description  string `json:"description"`
		ThumbnailURL string `json:"thumbnail_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40066, "invalid request payload")
		return
	}

	playlist, ok := p.loadOwnedPlaylist(ctx)
	if !ok {
		return
	}

	if name := utils.Sanitize(strings.TrimSpace(req.Name)); name != "" {
		playlist.Name = name
	}
	if req.Description != "" {
		playlist.Description = utils.Sanitize(req.Description)
	}
	if req.ThumbnailURL != "" {
		playlist.ThumbnailURL = req.ThumbnailURL
	}
	if err := p.db.Save(playlist).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50096, "failed to update playlist")
		return
	}
	utils.Success(ctx, gin.H{"playlist": playlist})
}

// DeletePlaylist removes the playlist and its membership rows. Owner only.
func (p *PlaylistController) DeletePlaylist(ctx *gin.Context) {
	playlist, ok := p.loadOwnedPlaylist(ctx)
	if !ok {
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("playlist_id = ?", playlist.ID).Delete(&models.PlaylistVideo{}).Error; err != nil {
			return err
		}
		return tx.Delete(playlist).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50097, "failed to delete playlist")
		return
	}
	utils.Success(ctx, gin.H{"message": "playlist deleted"})
}

// loadOwnedPlaylist fetches the :id playlist and enforces ownership,
// writing the error response itself on failure.
func (p *PlaylistController) loadOwnedPlaylist(ctx *gin.Context) (*models.Playlist, bool) {
	playlistID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40067, "invalid playlist id")
		return nil, false
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var playlist models.Playlist
	if err := p.db.First(&playlist, playlistID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40463, "playlist not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50098, "failed to load playlist")
		return nil, false
	}
	if playlist.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40360, "you can only modify your own playlists")
		return nil, false
	}
	return &playlist, true
}
