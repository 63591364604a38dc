package controllers

import (
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

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newViewRouter(t *testing.T) (*gin.Engine, *ViewController) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	vc := NewViewController(db)

	r := gin.New()
	r.POST("/api/v1/views/v/:videoId", middleware.AuthOptional(), vc.AddView)
	r.GET("/api/v1/views/v/:videoId", middleware.AuthOptional(), vc.GetVideoViews)
	r.POST("/api/v1/views/v/:videoId/sync", middleware.AuthRequired(), vc.SyncVideoViews)
	return r, vc
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "203.0.113.52:39000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}
	return w, env
}

func TestAddViewEndpoint(t *testing.T) {
	r, vc := newViewRouter(t)
	owner := seedUser(t, vc.db, "owner")
	viewer := seedUser(t, vc.db, "viewer")
	video := seedVideo(t, vc.db, owner.ID)
	path := "/api/v1/views/v/" + strconv.FormatUint(uint64(video.ID), 10)

	viewerToken, err := utils.GenerateAccessToken(viewer.ID, viewer.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	ownerToken, err := utils.GenerateAccessToken(owner.ID, owner.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	// Owner watching their own upload is not a view.
	w, env := doRequest(t, r, http.MethodPost, path, ownerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("owner view status %d", w.Code)
	}
	var out struct {
		Admitted   bool  `json:"admitted"`
		TotalViews int64 `json:"total_views"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if out.Admitted || out.TotalViews != 0 {
		t.Fatalf("owner view: admitted=%v total=%d", out.Admitted, out.TotalViews)
	}

	// Anonymous view counts once per address.
	for i, wantAdmitted := range []bool{true, false} {
		_, env = doRequest(t, r, http.MethodPost, path, "")
		if err := json.Unmarshal(env.Data, &out); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if out.Admitted != wantAdmitted {
			t.Fatalf("anonymous call %d: admitted=%v want %v", i, out.Admitted, wantAdmitted)
		}
	}

	// Authenticated viewer counts independently of the address row.
	_, env = doRequest(t, r, http.MethodPost, path, viewerToken)
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if !out.Admitted || out.TotalViews != 2 {
		t.Fatalf("viewer: admitted=%v total=%d, want true/2", out.Admitted, out.TotalViews)
	}

	// Counter and ledger agree through the read endpoint.
	_, env = doRequest(t, r, http.MethodGet, path, "")
	var stats struct {
		Views       int64 `json:"views"`
		LedgerViews int64 `json:"ledger_views"`
	}
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if stats.Views != 2 || stats.LedgerViews != 2 {
		t.Fatalf("stats views=%d ledger=%d, want 2/2", stats.Views, stats.LedgerViews)
	}
}

func TestAddViewUnknownVideoEndpoint(t *testing.T) {
	r, _ := newViewRouter(t)
	w, env := doRequest(t, r, http.MethodPost, "/api/v1/views/v/424242", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if env.Code != 40480 {
		t.Fatalf("app code %d, want 40480", env.Code)
	}
}

func TestGetVideoViewsHidesUnpublished(t *testing.T) {
	r, vc := newViewRouter(t)
	owner := seedUser(t, vc.db, "owner")
	video := seedVideo(t, vc.db, owner.ID)
	if err := vc.db.Model(&models.Video{}).Where("id = ?", video.ID).
		UpdateColumn("is_published", false).Error; err != nil {
		t.Fatalf("failed to unpublish video: %v", err)
	}
	path := "/api/v1/views/v/" + strconv.FormatUint(uint64(video.ID), 10)

	// To anyone but the owner an unpublished video does not exist.
	w, env := doRequest(t, r, http.MethodGet, path, "")
	if w.Code != http.StatusNotFound || env.Code != 40481 {
		t.Fatalf("anonymous read status=%d code=%d, want 404/40481", w.Code, env.Code)
	}

	other := seedUser(t, vc.db, "other")
	otherToken, err := utils.GenerateAccessToken(other.ID, other.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	w, _ = doRequest(t, r, http.MethodGet, path, otherToken)
	if w.Code != http.StatusNotFound {
		t.Fatalf("non-owner read status %d, want 404", w.Code)
	}

	ownerToken, err := utils.GenerateAccessToken(owner.ID, owner.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	w, env = doRequest(t, r, http.MethodGet, path, ownerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("owner read status %d: %s", w.Code, env.Message)
	}
}

func TestSyncRequiresAuth(t *testing.T) {
	r, vc := newViewRouter(t)
	owner := seedUser(t, vc.db, "owner")
	video := seedVideo(t, vc.db, owner.ID)
	path := "/api/v1/views/v/" + strconv.FormatUint(uint64(video.ID), 10) + "/sync"

	w, _ := doRequest(t, r, http.MethodPost, path, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated sync status %d, want 401", w.Code)
	}

	token, err := utils.GenerateAccessToken(owner.ID, owner.Username)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	// Corrupt the counter, then sync back to the ledger truth.
	if err := vc.db.Model(&models.Video{}).Where("id = ?", video.ID).UpdateColumn("views", 99).Error; err != nil {
		t.Fatalf("failed to corrupt counter: %v", err)
	}
	w, env := doRequest(t, r, http.MethodPost, path, token)
	if w.Code != http.StatusOK {
		t.Fatalf("sync status %d: %s", w.Code, env.Message)
	}
	if n := counterValue(t, vc.db, video.ID); n != 0 {
		t.Fatalf("counter after sync %d, want 0", n)
	}
}
