package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// SubscriptionController manages channel subscriptions.
type SubscriptionController struct {
	db *gorm.DB
}

// NewSubscriptionController creates a new SubscriptionController instance.
func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	return &SubscriptionController{db: db}
}

// ToggleSubscription subscribes the caller to a channel, or unsubscribes
// when already subscribed. Subscribing to yourself is rejected.
func (s *SubscriptionController) ToggleSubscription(ctx *gin.Context) {
	channelID, ok := parseUintParam(ctx, "channelId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid channel id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	if channelID == userID {
		utils.Error(ctx, http.StatusBadRequest, 40056, "cannot subscribe to your own channel")
		return
	}

	var channel models.User
	if err := s.db.Select("id").First(&channel, channelID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40455, "channel not found")
		return
	}

	var existing models.Subscription
	err := s.db.Where("subscriber_id = ? AND channel_id = ?", userID, channelID).First(&existing).Error
	if err == nil {
		if err := s.db.Delete(&existing).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to unsubscribe")
			return
		}
		s.respondWithCount(ctx, channelID, false)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to check subscription")
		return
	}

	sub := models.Subscription{SubscriberID: userID, ChannelID: channelID}
	if err := s.db.Create(&sub).Error; err != nil && !isDuplicateKey(err) {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to subscribe")
		return
	}
	s.respondWithCount(ctx, channelID, true)
}

func (s *SubscriptionController) respondWithCount(ctx *gin.Context, channelID uint, subscribed bool) {
	var count int64
	if err := s.db.Model(&models.Subscription{}).Where("channel_id = ?", channelID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50073, "failed to count subscribers")
		return
	}
	utils.Success(ctx, gin.H{"subscribed": subscribed, "subscriber_count": count})
}

// ListChannelSubscribers returns the users subscribed to a channel.
func (s *SubscriptionController) ListChannelSubscribers(ctx *gin.Context) {
	channelID, ok := parseUintParam(ctx, "channelId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40057, "invalid channel id")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := s.db.Model(&models.Subscription{}).Where("channel_id = ?", channelID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50074, "failed to count subscribers")
		return
	}

	var subs []models.Subscription
	if err := s.db.Where("channel_id = ?", channelID).
		Preload("Subscriber").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&subs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50075, "failed to list subscribers")
		return
	}

	items := make([]models.PublicUser, 0, len(subs))
	for _, sub := range subs {
		items = append(items, sub.Subscriber.Public())
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationPayload(page, pageSize, total),
	})
}

// ListSubscribedChannels returns the channels the caller is subscribed to.
func (s *SubscriptionController) ListSubscribedChannels(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := s.db.Model(&models.Subscription{}).Where("subscriber_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50076, "failed to count subscriptions")
		return
	}

	var subs []models.Subscription
	if err := s.db.Where("subscriber_id = ?", userID).
		Preload("Channel").Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&subs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50077, "failed to list subscriptions")
		return
	}

	items := make([]models.PublicUser, 0, len(subs))
	for _, sub := range subs {
		items = append(items, sub.Channel.Public())
	}

	utils.Success(ctx, gin.H{
		"items":      items,
		"pagination": paginationPayload(page, pageSize, total),
	})
}
