package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// ViewController exposes the view admission policy and the maintenance
// operations over the view ledger.
type ViewController struct {
	db *gorm.DB
}

// NewViewController creates a new ViewController instance.
func NewViewController(db *gorm.DB) *ViewController {
	return &ViewController{db: db}
}

// AddView runs the admission policy for one watch signal. Public with
// optional auth: an authenticated viewer is deduplicated per account, an
// anonymous one per network address.
func (v *ViewController) AddView(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid video id")
		return
	}

	viewerID := getOptionalUserID(ctx)
	result, err := AdmitView(v.db, videoID, viewerID, ctx.ClientIP(), time.Now())
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40480, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to record view")
		return
	}

	if result.Admitted {
		utils.PublishVideoEvent(videoID, "view", gin.H{"total_views": result.TotalViews})
	}

	utils.Success(ctx, gin.H{
		"admitted":    result.Admitted,
		"total_views": result.TotalViews,
	})
}

// GetVideoViews returns the cached counter alongside the ledger count, so
// drift between the two is visible to callers. Unpublished videos are
// visible to their owner only, same as GetVideo.
func (v *ViewController) GetVideoViews(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid video id")
		return
	}

	var video models.Video
	if err := v.db.Select("id", "user_id", "title", "views", "is_published").First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40481, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to load video")
		return
	}

	if !video.IsPublished {
		viewerID := getOptionalUserID(ctx)
		if viewerID == nil || *viewerID != video.UserID {
			utils.Error(ctx, http.StatusNotFound, 40481, "video not found")
			return
		}
	}

	var ledgerCount int64
	if err := v.db.Model(&models.View{}).Where("video_id = ?", videoID).Count(&ledgerCount).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to count views")
		return
	}

	utils.Success(ctx, gin.H{
		"video_id":     video.ID,
		"title":        video.Title,
		"views":        video.Views,
		"ledger_views": ledgerCount,
	})
}

// SyncVideoViews reconciles the cached counter against the ledger.
func (v *ViewController) SyncVideoViews(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid video id")
		return
	}

	total, err := ReconcileViews(v.db, videoID)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40482, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50083, "failed to sync views")
		return
	}

	utils.Success(ctx, gin.H{
		"video_id":    videoID,
		"total_views": total,
	})
}

// CleanupViews removes anonymous ledger rows older than the retention
// horizon. Authenticated rows are never touched, they carry the per-user
// dedup state.
func (v *ViewController) CleanupViews(ctx *gin.Context) {
	cfg := config.Get()
	horizon := time.Now().Add(-time.Duration(cfg.ViewRetentionHours) * time.Hour)

	res := v.db.Where("user_id IS NULL AND last_viewed_at < ?", horizon).Delete(&models.View{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50084, "failed to clean up views")
		return
	}

	utils.Success(ctx, gin.H{"deleted_count": res.RowsAffected})
}

// ResetVideoViews drops the whole ledger for a video and zeroes the counter.
// Owner only.
func (v *ViewController) ResetVideoViews(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40083, "invalid video id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var video models.Video
	if err := v.db.Select("id", "user_id").First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40483, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50085, "failed to load video")
		return
	}
	if video.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40380, "you can only reset views on your own videos")
		return
	}

	err := v.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", videoID).Delete(&models.View{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", videoID).
			UpdateColumn("views", 0).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50086, "failed to reset views")
		return
	}

	utils.Success(ctx, gin.H{"video_id": videoID, "total_views": 0})
}
