package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/darshakvaddoriya6/youtube-backend/middleware"
	"github.com/darshakvaddoriya6/youtube-backend/models"
	"github.com/darshakvaddoriya6/youtube-backend/utils"
)

func newCommentRouter(t *testing.T) (*gin.Engine, *CommentController) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	cc := NewCommentController(db)

	r := gin.New()
	r.GET("/api/v1/comments/video/:videoId", cc.ListVideoComments)
	r.POST("/api/v1/comments/video/:videoId", middleware.AuthRequired(), cc.AddComment)
	r.DELETE("/api/v1/comments/:commentId", middleware.AuthRequired(), cc.DeleteComment)
	return r, cc
}

func postJSON(t *testing.T, r *gin.Engine, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestAddCommentAndReplyRules(t *testing.T) {
	r, cc := newCommentRouter(t)
	owner := seedUser(t, cc.db, "owner")
	commenter := seedUser(t, cc.db, "commenter")
	video := seedVideo(t, cc.db, owner.ID)
	path := "/api/v1/comments/video/" + strconv.FormatUint(uint64(video.ID), 10)

	token, err := utils.GenerateAccessToken(commenter.ID, commenter.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	// Anonymous posting is rejected.
	w, _ := postJSON(t, r, path, "", gin.H{"content": "nope"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous comment status %d, want 401", w.Code)
	}

	// Markup is stripped before storage.
	w, env := postJSON(t, r, path, token, gin.H{"content": "<script>x()</script>nice video"})
	if w.Code != http.StatusOK {
		t.Fatalf("comment status %d: %s", w.Code, env.Message)
	}
	var created struct {
		Comment models.Comment `json:"comment"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if created.Comment.Content != "nice video" {
		t.Fatalf("content not sanitized: %q", created.Comment.Content)
	}

	// Replying to the top-level comment works.
	w, env = postJSON(t, r, path, token, gin.H{"content": "a reply", "parent_id": created.Comment.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("reply status %d: %s", w.Code, env.Message)
	}
	var reply struct {
		Comment models.Comment `json:"comment"`
	}
	if err := json.Unmarshal(env.Data, &reply); err != nil {
		t.Fatalf("bad payload: %v", err)
	}

	// Replying to a reply is refused, nesting is one level deep.
	w, env = postJSON(t, r, path, token, gin.H{"content": "too deep", "parent_id": reply.Comment.ID})
	if w.Code != http.StatusBadRequest || env.Code != 40044 {
		t.Fatalf("nested reply status=%d code=%d, want 400/40044", w.Code, env.Code)
	}
}

func TestDeleteCommentCascades(t *testing.T) {
	r, cc := newCommentRouter(t)
	owner := seedUser(t, cc.db, "owner")
	commenter := seedUser(t, cc.db, "commenter")
	other := seedUser(t, cc.db, "other")
	video := seedVideo(t, cc.db, owner.ID)

	parent := models.Comment{VideoID: video.ID, UserID: commenter.ID, Content: "parent"}
	if err := cc.db.Create(&parent).Error; err != nil {
		t.Fatalf("failed to seed comment: %v", err)
	}
	reply := models.Comment{VideoID: video.ID, UserID: other.ID, ParentID: &parent.ID, Content: "reply"}
	if err := cc.db.Create(&reply).Error; err != nil {
		t.Fatalf("failed to seed reply: %v", err)
	}
	for _, target := range []uint{parent.ID, reply.ID} {
		cid := target
		if err := cc.db.Create(&models.Like{UserID: other.ID, CommentID: &cid}).Error; err != nil {
			t.Fatalf("failed to seed like: %v", err)
		}
	}

	delPath := "/api/v1/comments/" + strconv.FormatUint(uint64(parent.ID), 10)

	// A bystander cannot delete someone else's comment.
	otherToken, err := utils.GenerateAccessToken(other.ID, other.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	req := httptest.NewRequest(http.MethodDelete, delPath, nil)
	req.Header.Set("Authorization", "Bearer "+otherToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("bystander delete status %d, want 403", w.Code)
	}

	// The video owner can moderate, and replies plus likes go with the comment.
	ownerToken, err := utils.GenerateAccessToken(owner.ID, owner.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	req = httptest.NewRequest(http.MethodDelete, delPath, nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("owner delete status %d: %s", w.Code, w.Body.String())
	}

	var comments, likes int64
	cc.db.Model(&models.Comment{}).Where("video_id = ?", video.ID).Count(&comments)
	cc.db.Model(&models.Like{}).Where("comment_id IS NOT NULL").Count(&likes)
	if comments != 0 || likes != 0 {
		t.Fatalf("cascade left comments=%d likes=%d", comments, likes)
	}
}
