package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// VideoController manages CRUD operations for video metadata. The media
// files themselves are uploaded to an external storage/CDN collaborator by
// the client; only URLs and public ids pass through here.
type VideoController struct {
	db *gorm.DB
}

// NewVideoController creates a new VideoController instance.
func NewVideoController(db *gorm.DB) *VideoController {
	return &VideoController{db: db}
}

// PublishVideo registers a new video under the authenticated channel.
func (v *VideoController) PublishVideo(ctx *gin.Context) {
	var req struct {
		Title             string `json:"title" binding:"required,min=1"`
		Description       string `json:"description"`
		VideoURL          string `json:"video_url" binding:"required,url"`
		ThumbnailURL      string `json:"thumbnail_url" binding:"required,url"`
		VideoPublicID     string `json:"video_public_id"`
		ThumbnailPublicID string `json:"thumbnail_public_id"`
		DurationSeconds   int    `json:"duration_seconds" binding:"required,min=1"`
		IsPublished       *bool  `json:"is_published"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "title cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	video := models.Video{
		UserID:            userID,
		Title:             title,
		Description:       utils.Sanitize(req.Description),
		VideoURL:          req.VideoURL,
		ThumbnailURL:      req.ThumbnailURL,
		VideoPublicID:     req.VideoPublicID,
		ThumbnailPublicID: req.ThumbnailPublicID,
		DurationSeconds:   req.DurationSeconds,
		IsPublished:       published,
	}

	if err := v.db.Create(&video).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to create video")
		return
	}

	utils.InvalidateByPrefix("cache:videos:list:")
	utils.InvalidateByPrefix("cache:channel:" + strconv.Itoa(int(userID)) + ":videos:")

	utils.Success(ctx, gin.H{"video": video})
}

// ListVideos returns the latest published videos including channel info.
func (v *VideoController) ListVideos(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:videos:list:page=%d:size=%d", page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var videos []models.Video
	var total int64

	query := v.db.Where("is_published = ?", true).Preload("User").Order("created_at DESC")
	if err := query.Model(&models.Video{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to count videos")
		return
	}
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&videos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to list videos")
		return
	}

	payload := gin.H{
		"items":      videos,
		"pagination": paginationPayload(page, pageSize, total),
	}
	utils.CacheSetEnvelope(cacheKey, payload, time.Hour)
	utils.Success(ctx, payload)
}

// SearchVideos matches published videos by title or description.
func (v *VideoController) SearchVideos(ctx *gin.Context) {
	search := strings.TrimSpace(ctx.Query("q"))
	if search == "" {
		utils.Error(ctx, http.StatusBadRequest, 40032, "missing search query")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var videos []models.Video
	var total int64
	query := v.db.Where("is_published = ?", true).
		Where("title LIKE ? OR description LIKE ?", "%"+search+"%", "%"+search+"%").
		Preload("User").Order("created_at DESC")
	if err := query.Model(&models.Video{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to count videos")
		return
	}
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&videos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to search videos")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      videos,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ListChannelVideos returns a channel's published videos (public).
func (v *VideoController) ListChannelVideos(ctx *gin.Context) {
	channelID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40033, "invalid channel id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	cacheKey := fmt.Sprintf("cache:channel:%d:videos:page=%d:size=%d", channelID, page, pageSize)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	var videos []models.Video
	var total int64
	query := v.db.Where("user_id = ? AND is_published = ?", channelID, true).
		Preload("User").Order("created_at DESC")
	if err := query.Model(&models.Video{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to count channel videos")
		return
	}
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).Find(&videos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to list channel videos")
		return
	}

	payload := gin.H{
		"items":      videos,
		"pagination": paginationPayload(page, pageSize, total),
	}
	utils.CacheSetEnvelope(cacheKey, payload, time.Hour)
	utils.Success(ctx, payload)
}

// GetVideo returns a single video. Unpublished videos are visible to their
// owner only.
func (v *VideoController) GetVideo(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40034, "invalid video id")
		return
	}

	var video models.Video
	if err := v.db.Preload("User").First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50037, "failed to load video")
		return
	}

	if !video.IsPublished {
		viewerID := getOptionalUserID(ctx)
		if viewerID == nil || *viewerID != video.UserID {
			utils.Error(ctx, http.StatusNotFound, 40430, "video not found")
			return
		}
	}

	utils.Success(ctx, gin.H{"video": video})
}

// UpdateVideo allows the owner to update metadata.
func (v *VideoController) UpdateVideo(ctx *gin.Context) {
	var req struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ThumbnailURL string `json:"thumbnail_url"`
		IsPublished  *bool  `json:"is_published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40035, "invalid request payload")
		return
	}

	videoID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40036, "invalid video id")
		return
	}

	var video models.Video
	if err := v.db.First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40431, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50038, "failed to load video")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if video.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40330, "you can only update your own videos")
		return
	}

	if title := utils.Sanitize(strings.TrimSpace(req.Title)); title != "" {
		video.Title = title
	}
	if req.Description != "" {
		video.Description = utils.Sanitize(req.Description)
	}
	if req.ThumbnailURL != "" {
		video.ThumbnailURL = req.ThumbnailURL
	}
	if req.IsPublished != nil {
		video.IsPublished = *req.IsPublished
	}
	if err := v.db.Save(&video).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50039, "failed to update video")
		return
	}

	utils.InvalidateByPrefix("cache:videos:list:")
	utils.InvalidateByPrefix("cache:channel:" + strconv.Itoa(int(userID)) + ":videos:")

	utils.Success(ctx, gin.H{"video": video})
}

// DeleteVideo removes a video with everything hanging off it: ledger rows,
// comments and their likes, playlist memberships and watch entries.
func (v *VideoController) DeleteVideo(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40037, "invalid video id")
		return
	}

	var video models.Video
	if err := v.db.First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40432, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load video")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if video.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40331, "you can only delete your own videos")
		return
	}

	err := v.db.Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("video_id = ?", videoID).
			Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		for _, m := range []interface{}{
			&models.Comment{}, &models.Like{}, &models.View{},
			&models.PlaylistVideo{}, &models.WatchHistory{}, &models.WatchLater{},
		} {
			if err := tx.Where("video_id = ?", videoID).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&video).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to delete video")
		return
	}

	utils.InvalidateByPrefix("cache:videos:list:")
	utils.InvalidateByPrefix("cache:channel:" + strconv.Itoa(int(userID)) + ":videos:")

	utils.Success(ctx, gin.H{"message": "video deleted"})
}
