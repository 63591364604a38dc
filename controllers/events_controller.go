package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

// EventsController streams per-video activity (views, comments) to watch
// pages over Server-Sent Events, backed by Redis pub/sub.
type EventsController struct {
	db *gorm.DB
}

// NewEventsController creates a new EventsController instance.
func NewEventsController(db *gorm.DB) *EventsController {
	return &EventsController{db: db}
}

const sseHeartbeat = 25 * time.Second

// StreamVideoEvents subscribes the client to a video's activity feed.
// The connection stays open until the client disconnects or the
// subscription is torn down server-side.
func (e *EventsController) StreamVideoEvents(ctx *gin.Context) {
	videoID, ok := parseUintParam(ctx, "videoId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40096, "invalid video id")
		return
	}

	var video models.Video
	if err := e.db.Select("id, is_published").First(&video, videoID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40496, "video not found")
		return
	}
	if !video.IsPublished {
		utils.Error(ctx, http.StatusNotFound, 40496, "video not found")
		return
	}

	events, err := utils.SubscribeVideoEvents(ctx.Request.Context(), videoID)
	if err != nil {
		utils.Error(ctx, http.StatusServiceUnavailable, 50140, "event stream unavailable")
		return
	}

	subscriberID := uuid.NewString()
	utils.Sugar.Infof("sse subscribe video=%d sub=%s ip=%s", videoID, subscriberID, ctx.ClientIP())

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	// Opening event so the client knows the subscription is live.
	fmt.Fprintf(ctx.Writer, "event: open\ndata: {\"subscriber_id\":%q}\n\n", subscriberID)
	ctx.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()
	defer utils.Sugar.Infof("sse close video=%d sub=%s", videoID, subscriberID)

	for {
		select {
		case <-ctx.Request.Context().Done():
			return
		case msg, open := <-events:
			if !open {
				return
			}
			fmt.Fprintf(ctx.Writer, "event: activity\ndata: %s\n\n", msg)
			ctx.Writer.Flush()
		case <-heartbeat.C:
			fmt.Fprint(ctx.Writer, ": ping\n\n")
			ctx.Writer.Flush()
		}
	}
}
