package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// HistoryController manages the per-user watch history and watch-later queue.
type HistoryController struct {
	db *gorm.DB
}

// NewHistoryController creates a new HistoryController instance.
func NewHistoryController(db *gorm.DB) *HistoryController {
	return &HistoryController{db: db}
}

// GetWatchHistory lists watched videos, most recent first.
func (h *HistoryController) GetWatchHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := h.db.Model(&models.WatchHistory{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50110, "failed to count history")
		return
	}

	var entries []models.WatchHistory
	if err := h.db.Where("user_id = ?", userID).
		Preload("Video").Preload("Video.User").
		Order("watched_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50111, "failed to list history")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      entries,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// AddToWatchHistory records that the caller watched a video; re-watching
// refreshes the timestamp on the existing row via upsert.
func (h *HistoryController) AddToWatchHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid video id")
		return
	}

	var video models.Video
	if err := h.db.Select("id").First(&video, videoID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40490, "video not found")
		return
	}

	now := time.Now()
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"watched_at": now}),
	}).Create(&models.WatchHistory{UserID: userID, VideoID: videoID, WatchedAt: now}).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50112, "failed to record watch")
		return
	}

	utils.Success(ctx, gin.H{"message": "watch recorded"})
}

// RemoveFromWatchHistory deletes one history entry.
func (h *HistoryController) RemoveFromWatchHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid video id")
		return
	}

	res := h.db.Where("user_id = ? AND video_id = ?", userID, videoID).Delete(&models.WatchHistory{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50113, "failed to remove history entry")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40491, "history entry not found")
		return
	}
	utils.Success(ctx, gin.H{"message": "history entry removed"})
}

// ClearWatchHistory wipes the caller's entire history.
func (h *HistoryController) ClearWatchHistory(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := h.db.Where("user_id = ?", userID).Delete(&models.WatchHistory{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50114, "failed to clear history")
		return
	}
	utils.Success(ctx, gin.H{"message": "history cleared"})
}

// GetWatchLater lists the caller's watch-later queue.
func (h *HistoryController) GetWatchLater(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := h.db.Model(&models.WatchLater{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50115, "failed to count watch later")
		return
	}

	var entries []models.WatchLater
	if err := h.db.Where("user_id = ?", userID).
		Preload("Video").Preload("Video.User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&entries).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50116, "failed to list watch later")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      entries,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ToggleWatchLater adds a video to the queue or removes it if present.
func (h *HistoryController) ToggleWatchLater(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid video id")
		return
	}

	res := h.db.Where("user_id = ? AND video_id = ?", userID, videoID).Delete(&models.WatchLater{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50117, "failed to toggle watch later")
		return
	}
	if res.RowsAffected > 0 {
		utils.Success(ctx, gin.H{"saved": false})
		return
	}

	var video models.Video
	if err := h.db.Select("id").First(&video, videoID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40492, "video not found")
		return
	}
	if err := h.db.Create(&models.WatchLater{UserID: userID, VideoID: videoID}).Error; err != nil && !isDuplicateKey(err) {
		utils.Error(ctx, http.StatusInternalServerError, 50118, "failed to save video")
		return
	}
	utils.Success(ctx, gin.H{"saved": true})
}

// ClearWatchLater empties the caller's queue.
func (h *HistoryController) ClearWatchLater(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := h.db.Where("user_id = ?", userID).Delete(&models.WatchLater{}).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50119, "failed to clear watch later")
		return
	}
	utils.Success(ctx, gin.H{"message": "watch later cleared"})
}
