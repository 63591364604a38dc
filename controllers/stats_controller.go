package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// StatsController serves the channel dashboard and public platform totals.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetChannelStats returns aggregate numbers for the caller's own channel.
func (s *StatsController) GetChannelStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var totalVideos int64
	s.db.Model(&models.Video{}).Where("user_id = ?", userID).Count(&totalVideos)

	var totalViews int64
	s.db.Model(&models.Video{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(views), 0)").Scan(&totalViews)

	var totalSubscribers int64
	s.db.Model(&models.Subscription{}).Where("channel_id = ?", userID).Count(&totalSubscribers)

	var totalLikes int64
	s.db.Model(&models.Like{}).
		Joins("JOIN videos ON videos.id = likes.video_id").
		Where("videos.user_id = ?", userID).
		Count(&totalLikes)

	utils.Success(ctx, gin.H{
		"total_videos":      totalVideos,
		"total_views":       totalViews,
		"total_subscribers": totalSubscribers,
		"total_likes":       totalLikes,
	})
}

// GetChannelVideoStats lists the caller's videos with per-video counters,
// including the ledger count so drift from the cached total is visible.
func (s *StatsController) GetChannelVideoStats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := s.db.Model(&models.Video{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50130, "failed to count videos")
		return
	}

	var videos []models.Video
	if err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&videos).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50131, "failed to list videos")
		return
	}

	items := make([]gin.H, 0, len(videos))
	for i := range videos {
		v := &videos[i]

		var ledgerViews int64
		s.db.Model(&models.View{}).Where("video_id = ?", v.ID).Count(&ledgerViews)
		var likes int64
		s.db.Model(&models.Like{}).Where("video_id = ?", v.ID).Count(&likes)
		var comments int64
		s.db.Model(&models.Comment{}).Where("video_id = ?", v.ID).Count(&comments)

		items = append(items, gin.H{
			"video":        v,
			"ledger_views": ledgerViews,
			"likes":        likes,
			"comments":     comments,
		})
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// GetPlatformStats returns public site-wide totals. Cached briefly since
// every number here is a full table count.
func (s *StatsController) GetPlatformStats(ctx *gin.Context) {
	const cacheKey = "cache:stats:platform"
	if payload, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json; charset=utf-8", payload)
		return
	}

	var users, videos, views, comments int64
	s.db.Model(&models.User{}).Count(&users)
	s.db.Model(&models.Video{}).Where("is_published = ?", true).Count(&videos)
	s.db.Model(&models.View{}).Count(&views)
	s.db.Model(&models.Comment{}).Count(&comments)

	payload := gin.H{
		"total_users":    users,
		"total_videos":   videos,
		"total_views":    views,
		"total_comments": comments,
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
	}
	utils.CacheSetEnvelope(cacheKey, payload, 60*time.Second)
	utils.Success(ctx, payload)
}

// GetVideoStats returns the counters for a single published video.
func (s *StatsController) GetVideoStats(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40095, "invalid video id")
		return
	}

	var video models.Video
	if err := s.db.First(&video, videoID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40495, "video not found")
		return
	}
	if !video.IsPublished {
		utils.Error(ctx, http.StatusNotFound, 40495, "video not found")
		return
	}

	var ledgerViews, likes, comments int64
	s.db.Model(&models.View{}).Where("video_id = ?", video.ID).Count(&ledgerViews)
	s.db.Model(&models.Like{}).Where("video_id = ?", video.ID).Count(&likes)
	s.db.Model(&models.Comment{}).Where("video_id = ?", video.ID).Count(&comments)

	utils.Success(ctx, gin.H{
		"video_id":     video.ID,
		"views":        video.Views,
		"ledger_views": ledgerViews,
		"likes":        likes,
		"comments":     comments,
		"drift":        video.Views - ledgerViews,
	})
}
