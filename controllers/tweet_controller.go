package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// TweetController manages short community posts on channel pages.
type TweetController struct {
	db *gorm.DB
}

// NewTweetController creates a new TweetController instance.
func NewTweetController(db *gorm.DB) *TweetController {
	return &TweetController{db: db}
}

// CreateTweet posts a community update on the caller's channel.
func (t *TweetController) CreateTweet(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40071, "content cannot be empty")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	tweet := models.Tweet{UserID: userID, Content: content}
	if err := t.db.Create(&tweet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to create tweet")
		return
	}
	utils.Success(ctx, gin.H{"tweet": tweet})
}

// UpdateTweet edits the caller's own tweet.
func (t *TweetController) UpdateTweet(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40072, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40073, "content cannot be empty")
		return
	}

	tweet, ok := t.loadOwnedTweet(ctx)
	if !ok {
		return
	}
	tweet.Content = content
	if err := t.db.Save(tweet).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to update tweet")
		return
	}
	utils.Success(ctx, gin.H{"tweet": tweet})
}

// DeleteTweet removes the caller's own tweet and its likes.
func (t *TweetController) DeleteTweet(ctx *gin.Context) {
	tweet, ok := t.loadOwnedTweet(ctx)
	if !ok {
		return
	}

	err := t.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tweet_id = ?", tweet.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(tweet).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to delete tweet")
		return
	}
	utils.Success(ctx, gin.H{"message": "tweet deleted"})
}

// ListUserTweets returns a user's tweets, newest first (public).
func (t *TweetController) ListUserTweets(ctx *gin.Context) {
	ownerID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40074, "invalid user id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := t.db.Model(&models.Tweet{}).Where("user_id = ?", ownerID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50103, "failed to count tweets")
		return
	}

	var tweets []models.Tweet
	if err := t.db.Where("user_id = ?", ownerID).Preload("User").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&tweets).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to list tweets")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      tweets,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

func (t *TweetController) loadOwnedTweet(ctx *gin.Context) (*models.Tweet, bool) {
	tweetID, ok := parseUintParam(ctx, "tweetId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40075, "invalid tweet id")
		return nil, false
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return nil, false
	}

	var tweet models.Tweet
	if err := t.db.First(&tweet, tweetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40470, "tweet not found")
			return nil, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to load tweet")
		return nil, false
	}
	if tweet.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40370, "you can only modify your own tweets")
		return nil, false
	}
	return &tweet, true
}
