package controllers

import (
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.SetForTesting(config.AppConfig{
		JWTSecret:             "test-secret",
		ViewCooldownMinutes:   5,
		ViewRetentionHours:    1,
		AccessTokenTTLMinutes: 60,
		RefreshTokenTTLHours:  240,
	})
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Video{}, &models.View{},
		&models.Comment{}, &models.Like{}, &models.Subscription{},
		&models.Playlist{}, &models.PlaylistVideo{}, &models.Tweet{},
		&models.WatchHistory{}, &models.WatchLater{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	config.SetDBForTesting(db)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", FullName: username}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return u
}

func seedVideo(t *testing.T, db *gorm.DB, ownerID uint) *models.Video {
	t.Helper()
	v := &models.Video{
		UserID:       ownerID,
		Title:        "test video",
		VideoURL:     "https://cdn.example.com/v.mp4",
		ThumbnailURL: "https://cdn.example.com/v.jpg",
		IsPublished:  true,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("failed to seed video: %v", err)
	}
	return v
}

func ledgerCount(t *testing.T, db *gorm.DB, videoID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.View{}).Where("video_id = ?", videoID).Count(&n).Error; err != nil {
		t.Fatalf("failed to count ledger rows: %v", err)
	}
	return n
}

func counterValue(t *testing.T, db *gorm.DB, videoID uint) int64 {
	t.Helper()
	var v models.Video
	if err := db.First(&v, videoID).Error; err != nil {
		t.Fatalf("failed to reload video: %v", err)
	}
	return v.Views
}

func TestAdmitViewUnknownVideo(t *testing.T) {
	db := newTestDB(t)
	_, err := AdmitView(db, 9999, nil, "203.0.113.7", time.Now())
	if !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound, got %v", err)
	}
	if n := ledgerCount(t, db, 9999); n != 0 {
		t.Fatalf("expected no ledger rows, got %d", n)
	}
}

func TestOwnerSelfViewNotCounted(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	video := seedVideo(t, db, owner.ID)

	res, err := AdmitView(db, video.ID, &owner.ID, "203.0.113.7", time.Now())
	if err != nil {
		t.Fatalf("AdmitView failed: %v", err)
	}
	if res.Admitted {
		t.Fatal("owner self-view was counted")
	}
	if res.TotalViews != 0 {
		t.Fatalf("expected total 0, got %d", res.TotalViews)
	}
	if n := ledgerCount(t, db, video.ID); n != 0 {
		t.Fatalf("owner self-view wrote %d ledger rows", n)
	}
}

func TestAuthenticatedFirstRepeatAndCooldown(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")
	video := seedVideo(t, db, owner.ID)

	base := time.Now().Truncate(time.Second)

	// First view always counts.
	res, err := AdmitView(db, video.ID, &viewer.ID, "203.0.113.7", base)
	if err != nil {
		t.Fatalf("first view failed: %v", err)
	}
	if !res.Admitted || res.TotalViews != 1 {
		t.Fatalf("first view: admitted=%v total=%d, want true/1", res.Admitted, res.TotalViews)
	}

	// Immediate repeat is inside the cooldown.
	res, err = AdmitView(db, video.ID, &viewer.ID, "203.0.113.7", base.Add(30*time.Second))
	if err != nil {
		t.Fatalf("repeat view failed: %v", err)
	}
	if res.Admitted || res.TotalViews != 1 {
		t.Fatalf("repeat view: admitted=%v total=%d, want false/1", res.Admitted, res.TotalViews)
	}

	// Exactly at the cooldown boundary the view counts again.
	res, err = AdmitView(db, video.ID, &viewer.ID, "203.0.113.7", base.Add(ViewCooldown()))
	if err != nil {
		t.Fatalf("cooled-down view failed: %v", err)
	}
	if !res.Admitted || res.TotalViews != 2 {
		t.Fatalf("cooled-down view: admitted=%v total=%d, want true/2", res.Admitted, res.TotalViews)
	}

	// The ledger row was refreshed in place, never duplicated.
	if n := ledgerCount(t, db, video.ID); n != 1 {
		t.Fatalf("expected 1 ledger row, got %d", n)
	}
	var row models.View
	if err := db.Where("video_id = ? AND user_id = ?", video.ID, viewer.ID).First(&row).Error; err != nil {
		t.Fatalf("failed to fetch ledger row: %v", err)
	}
	if !row.LastViewedAt.Equal(base.Add(ViewCooldown())) {
		t.Fatalf("ledger timestamp not refreshed: got %v", row.LastViewedAt)
	}
}

func TestAnonymousDedupPerAddress(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	video := seedVideo(t, db, owner.ID)

	base := time.Now().Truncate(time.Second)

	res, err := AdmitView(db, video.ID, nil, "198.51.100.1", base)
	if err != nil {
		t.Fatalf("anonymous view failed: %v", err)
	}
	if !res.Admitted || res.TotalViews != 1 {
		t.Fatalf("anonymous first view: admitted=%v total=%d, want true/1", res.Admitted, res.TotalViews)
	}

	// Same address inside the window is ignored.
	res, err = AdmitView(db, video.ID, nil, "198.51.100.1", base.Add(time.Minute))
	if err != nil {
		t.Fatalf("anonymous repeat failed: %v", err)
	}
	if res.Admitted {
		t.Fatal("anonymous repeat inside window was counted")
	}

	// A different address is an independent viewer.
	res, err = AdmitView(db, video.ID, nil, "198.51.100.2", base.Add(time.Minute))
	if err != nil {
		t.Fatalf("second address view failed: %v", err)
	}
	if !res.Admitted || res.TotalViews != 2 {
		t.Fatalf("second address: admitted=%v total=%d, want true/2", res.Admitted, res.TotalViews)
	}

	// After the window the first address counts again by refreshing its row.
	res, err = AdmitView(db, video.ID, nil, "198.51.100.1", base.Add(ViewCooldown()+time.Second))
	if err != nil {
		t.Fatalf("cooled-down anonymous view failed: %v", err)
	}
	if !res.Admitted || res.TotalViews != 3 {
		t.Fatalf("cooled-down anonymous: admitted=%v total=%d, want true/3", res.Admitted, res.TotalViews)
	}

	// One row per address, not one per admitted view.
	if n := ledgerCount(t, db, video.ID); n != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", n)
	}
}

func TestMixedAuthenticatedAndAnonymous(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")
	video := seedVideo(t, db, owner.ID)

	now := time.Now()
	if res, _ := AdmitView(db, video.ID, &viewer.ID, "203.0.113.7", now); !res.Admitted {
		t.Fatal("authenticated view not counted")
	}
	// Same address but an anonymous session dedups independently of the user row.
	if res, _ := AdmitView(db, video.ID, nil, "203.0.113.7", now); !res.Admitted {
		t.Fatal("anonymous view not counted")
	}

	if n := counterValue(t, db, video.ID); n != 2 {
		t.Fatalf("expected counter 2, got %d", n)
	}
	if n := ledgerCount(t, db, video.ID); n != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", n)
	}
}

func TestAdmissionSequence(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")
	video := seedVideo(t, db, owner.ID)

	t0 := time.Now().Truncate(time.Second)

	steps := []struct {
		name         string
		viewerID     *uint
		addr         string
		at           time.Time
		wantAdmitted bool
		wantTotal    int64
	}{
		{"owner self-view", &owner.ID, "1.2.3.4", t0, false, 0},
		{"viewer first view", &viewer.ID, "1.2.3.4", t0, true, 1},
		{"viewer inside cooldown", &viewer.ID, "1.2.3.4", t0.Add(3 * time.Minute), false, 1},
		{"anonymous new address", nil, "9.9.9.9", t0, true, 2},
	}
	for _, step := range steps {
		res, err := AdmitView(db, video.ID, step.viewerID, step.addr, step.at)
		if err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		if res.Admitted != step.wantAdmitted || res.TotalViews != step.wantTotal {
			t.Fatalf("%s: admitted=%v total=%d, want %v/%d",
				step.name, res.Admitted, res.TotalViews, step.wantAdmitted, step.wantTotal)
		}
	}
}

func TestReconcileViews(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")
	video := seedVideo(t, db, owner.ID)

	base := time.Now().Truncate(time.Second)
	if _, err := AdmitView(db, video.ID, &viewer.ID, "203.0.113.7", base); err != nil {
		t.Fatalf("seed view failed: %v", err)
	}
	// A cooled-down repeat bumps the counter to 2 while the ledger stays at 1.
	if _, err := AdmitView(db, video.ID, &viewer.ID, "203.0.113.7", base.Add(ViewCooldown())); err != nil {
		t.Fatalf("repeat view failed: %v", err)
	}
	if _, err := AdmitView(db, video.ID, nil, "198.51.100.9", base); err != nil {
		t.Fatalf("anonymous view failed: %v", err)
	}

	if n := counterValue(t, db, video.ID); n != 3 {
		t.Fatalf("expected counter 3 before reconcile, got %d", n)
	}

	// Reconciliation rewrites the counter from distinct ledger rows.
	count, err := ReconcileViews(db, video.ID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected reconciled count 2, got %d", count)
	}
	if n := counterValue(t, db, video.ID); n != 2 {
		t.Fatalf("counter not rewritten, got %d", n)
	}

	// Idempotent: a second run changes nothing.
	count, err = ReconcileViews(db, video.ID)
	if err != nil {
		t.Fatalf("second reconcile failed: %v", err)
	}
	if count != 2 || counterValue(t, db, video.ID) != 2 {
		t.Fatalf("reconcile not idempotent, count=%d", count)
	}

	if _, err := ReconcileViews(db, 4242); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound for missing video, got %v", err)
	}
}

func TestDuplicateKeyDetection(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "owner")
	viewer := seedUser(t, db, "viewer")
	video := seedVideo(t, db, owner.ID)

	first := models.View{VideoID: video.ID, UserID: &viewer.ID, IPAddress: "203.0.113.7", LastViewedAt: time.Now()}
	if err := db.Create(&first).Error; err != nil {
		t.Fatalf("failed to insert ledger row: %v", err)
	}
	dup := models.View{VideoID: video.ID, UserID: &viewer.ID, IPAddress: "203.0.113.8", LastViewedAt: time.Now()}
	err := db.Create(&dup).Error
	if err == nil {
		t.Fatal("expected unique index violation")
	}
	if !isDuplicateKey(err) {
		t.Fatalf("duplicate not recognized: %v", err)
	}

	// NULL user rows never collide on the unique index.
	for i := 0; i < 2; i++ {
		anon := models.View{VideoID: video.ID, IPAddress: "198.51.100.3", LastViewedAt: time.Now()}
		if err := db.Create(&anon).Error; err != nil {
			t.Fatalf("anonymous row %d rejected: %v", i, err)
		}
	}
}
