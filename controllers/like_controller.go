package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// LikeController implements toggle-style likes on videos, comments and tweets.
type LikeController struct {
	db *gorm.DB
}

// NewLikeController creates a new LikeController instance.
func NewLikeController(db *gorm.DB) *LikeController {
	return &LikeController{db: db}
}

// ToggleVideoLike likes the video, or removes the like when it exists.
func (l *LikeController) ToggleVideoLike(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid video id")
		return
	}
	var video models.Video
	if err := l.db.Select("id").First(&video, videoID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40450, "video not found")
		return
	}
	l.toggle(ctx, "video_id", videoID, models.Like{VideoID: &videoID})
}

// ToggleCommentLike likes the comment, or removes the like when it exists.
func (l *LikeController) ToggleCommentLike(ctx *gin.Context) {
	commentID, ok := parseUintParam(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid comment id")
		return
	}
	var comment models.Comment
	if err := l.db.Select("id").First(&comment, commentID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40451, "comment not found")
		return
	}
	l.toggle(ctx, "comment_id", commentID, models.Like{CommentID: &commentID})
}

// ToggleTweetLike likes the tweet, or removes the like when it exists.
func (l *LikeController) ToggleTweetLike(ctx *gin.Context) {
	tweetID, ok := parseUintParam(ctx, "tweetId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid tweet id")
		return
	}
	var tweet models.Tweet
	if err := l.db.Select("id").First(&tweet, tweetID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40452, "tweet not found")
		return
	}
	l.toggle(ctx, "tweet_id", tweetID, models.Like{TweetID: &tweetID})
}

// toggle removes an existing like for (user, target) or creates one. The
// unique index absorbs concurrent double-creates; losing that race counts as
// "already liked".
func (l *LikeController) toggle(ctx *gin.Context, column string, targetID uint, like models.Like) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var existing models.Like
	err := l.db.Where("user_id = ? AND "+column+" = ?", userID, targetID).First(&existing).Error
	if err == nil {
		if err := l.db.Delete(&existing).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to remove like")
			return
		}
		l.respondWithCount(ctx, column, targetID, false)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to check like")
		return
	}

	like.UserID = userID
	if err := l.db.Create(&like).Error; err != nil && !isDuplicateKey(err) {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to create like")
		return
	}
	l.respondWithCount(ctx, column, targetID, true)
}

func (l *LikeController) respondWithCount(ctx *gin.Context, column string, targetID uint, liked bool) {
	var count int64
	if err := l.db.Model(&models.Like{}).Where(column+" = ?", targetID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to count likes")
		return
	}
	utils.Success(ctx, gin.H{"liked": liked, "like_count": count})
}

// GetLikedVideos lists the videos the authenticated user has liked.
func (l *LikeController) GetLikedVideos(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := l.db.Model(&models.Like{}).
		Where("user_id = ? AND video_id IS NOT NULL", userID).
		Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to count liked videos")
		return
	}

	var videoIDs []uint
	if err := l.db.Model(&models.Like{}).
		Where("user_id = ? AND video_id IS NOT NULL", userID).
		Order("created_at DESC").
		Offset((page-1)*pageSize).Limit(pageSize).
		Pluck("video_id", &videoIDs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to list liked videos")
		return
	}

	var videos []models.Video
	if len(videoIDs) > 0 {
		if err := l.db.Preload("User").Find(&videos, videoIDs).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50066, "failed to load liked videos")
			return
		}
	}

	utils.Success(ctx, gin.H{
		"items":      videos,
		"pagination": paginationPayload(page, pageSize, total),
	})
}
