package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// CommentController manages comments and one-level replies on videos.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// ListVideoComments returns a video's top-level comments, newest first, with
// replies nested under their parents.
func (c *CommentController) ListVideoComments(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid video id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	base := c.db.Model(&models.Comment{}).Where("video_id = ? AND parent_id IS NULL", videoID)
	if err := base.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := c.db.Where("video_id = ? AND parent_id IS NULL", videoID).
		Preload("User").
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Replies.User").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      comments,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// AddComment posts a comment or, when parent_id is set, a reply. Replies
// must target a top-level comment of the same video.
func (c *CommentController) AddComment(ctx *gin.Context) {
	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40042, "content cannot be empty")
		return
	}

	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40043, "invalid video id")
		return
	}

	var video models.Video
	if err := c.db.Select("id").First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "video not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to load video")
		return
	}

	if req.ParentID != nil {
		var parent models.Comment
		if err := c.db.Select("id", "video_id", "parent_id").First(&parent, *req.ParentID).Error; err != nil {
			utils.Error(ctx, http.StatusNotFound, 40441, "parent comment not found")
			return
		}
		if parent.VideoID != videoID || parent.ParentID != nil {
			utils.Error(ctx, http.StatusBadRequest, 40044, "cannot reply to that comment")
			return
		}
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment := models.Comment{
		VideoID:  videoID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to create comment")
		return
	}
	if err := c.db.Preload("User").First(&comment, comment.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to load comment")
		return
	}

	utils.PublishVideoEvent(videoID, "comment", comment)

	utils.Success(ctx, gin.H{"comment": comment})
}

// UpdateComment allows the comment owner to edit its content.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40045, "invalid request payload")
		return
	}
	content := utils.Sanitize(req.Content)
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40046, "content cannot be empty")
		return
	}

	commentID, ok := parseUintParam(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40047, "invalid comment id")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40442, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if comment.UserID != userID {
		utils.Error(ctx, http.StatusForbidden, 40340, "you can only update your own comments")
		return
	}

	comment.Content = content
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to update comment")
		return
	}
	utils.Success(ctx, gin.H{"comment": comment})
}

// DeleteComment removes a comment along with its replies and all likes of
// them. Allowed for the comment owner and for the video owner (moderation).
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID, ok := parseUintParam(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40048, "invalid comment id")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40443, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50057, "failed to load comment")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if comment.UserID != userID {
		var video models.Video
		if err := c.db.Select("user_id").First(&video, comment.VideoID).Error; err != nil || video.UserID != userID {
			utils.Error(ctx, http.StatusForbidden, 40341, "you can only delete your own comments")
			return
		}
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		ids := []uint{comment.ID}
		var replyIDs []uint
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", comment.ID).
			Pluck("id", &replyIDs).Error; err != nil {
			return err
		}
		ids = utils.UniqueUint(append(ids, replyIDs...))

		if err := tx.Where("comment_id IN ?", ids).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Comment{}).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50058, "failed to delete comment")
		return
	}

	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
