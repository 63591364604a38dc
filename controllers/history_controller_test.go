package controllers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/darshakvaddoriya6/youtube-backend/middleware"
	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

func TestWatchHistoryUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	hc := NewHistoryController(db)

	r := gin.New()
	r.POST("/api/v1/history/v/:videoId", middleware.AuthRequired(), hc.AddToWatchHistory)

	owner := seedUser(t, db, "owner")
	watcher := seedUser(t, db, "watcher")
	video := seedVideo(t, db, owner.ID)
	token, err := utils.GenerateAccessToken(watcher.ID, watcher.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	path := "/api/v1/history/v/" + strconv.FormatUint(uint64(video.ID), 10)

	watch := func() {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("watch status %d: %s", w.Code, w.Body.String())
		}
	}

	watch()
	var first models.WatchHistory
	if err := db.Where("user_id = ? AND video_id = ?", watcher.ID, video.ID).First(&first).Error; err != nil {
		t.Fatalf("history row missing: %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	watch()

	var rows int64
	db.Model(&models.WatchHistory{}).Where("user_id = ?", watcher.ID).Count(&rows)
	if rows != 1 {
		t.Fatalf("re-watch appended a row, have %d", rows)
	}
	var second models.WatchHistory
	if err := db.Where("user_id = ? AND video_id = ?", watcher.ID, video.ID).First(&second).Error; err != nil {
		t.Fatalf("history row missing after re-watch: %v", err)
	}
	if !second.WatchedAt.After(first.WatchedAt) {
		t.Fatalf("watched_at not refreshed: %v -> %v", first.WatchedAt, second.WatchedAt)
	}
}
