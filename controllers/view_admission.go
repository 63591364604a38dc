package controllers

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/darshakvaddoriya6/youtube-backend/config"
	"github.com/darshakvaddoriya6/youtube-backend/models"
)

// ErrVideoNotFound is returned when an admission or reconcile call references
// a video that does not exist. No side effects have happened when it is seen.
var ErrVideoNotFound = errors.New("video not found")

// AdmissionResult is the outcome of one view admission call. TotalViews is
// the post-increment counter when Admitted, the unchanged counter otherwise.
type AdmissionResult struct {
	Admitted   bool  `json:"admitted"`
	TotalViews int64 `json:"total_views"`
}

// ViewCooldown is the window during which a repeat view from the same viewer
// identity (or the same anonymous address) is not re-counted.
func ViewCooldown() time.Duration {
	return time.Duration(config.Get().ViewCooldownMinutes) * time.Minute
}

// AdmitView decides whether a watch signal counts as a view and mutates the
// ledger and the cached counter accordingly. Rules, in order:
//
//  1. owners never count views on their own videos (authenticated only);
//  2. an authenticated viewer's first view is always counted, one ledger row
//     per (video, user) enforced by the unique index; the loser of a
//     concurrent first-view race falls back to the repeat-view path;
//  3. an authenticated repeat view counts once the cooldown has elapsed,
//     refreshing the existing row's timestamp in place;
//  4. an anonymous viewer is deduplicated per (video, ip) within the
//     cooldown window; a stale row is refreshed in place like rule 3.
//
// Per call there is at most one ledger write and at most one counter
// increment, performed in a single transaction.
func AdmitView(db *gorm.DB, videoID uint, viewerID *uint, ipAddress string, now time.Time) (AdmissionResult, error) {
	var video models.Video
	if err := db.Select("id", "user_id", "views").First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AdmissionResult{}, ErrVideoNotFound
		}
		return AdmissionResult{}, err
	}

	if viewerID != nil && *viewerID == video.UserID {
		return AdmissionResult{Admitted: false, TotalViews: video.Views}, nil
	}

	cooldown := ViewCooldown()
	admitted := false
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if viewerID != nil {
			admitted, err = admitAuthenticated(tx, videoID, *viewerID, ipAddress, now, cooldown)
		} else {
			admitted, err = admitAnonymous(tx, videoID, ipAddress, now, cooldown)
		}
		if err != nil || !admitted {
			return err
		}
		return tx.Model(&models.Video{}).Where("id = ?", videoID).
			UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	})
	if err != nil {
		return AdmissionResult{}, err
	}

	total := video.Views
	if admitted {
		if err := db.Model(&models.Video{}).Select("views").Where("id = ?", videoID).Scan(&total).Error; err != nil {
			total = video.Views + 1
		}
	}
	return AdmissionResult{Admitted: admitted, TotalViews: total}, nil
}

func admitAuthenticated(tx *gorm.DB, videoID, viewerID uint, ipAddress string, now time.Time, cooldown time.Duration) (bool, error) {
	var view models.View
	err := tx.Where("video_id = ? AND user_id = ?", videoID, viewerID).First(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := models.View{VideoID: videoID, UserID: &viewerID, IPAddress: ipAddress, LastViewedAt: now}
		cerr := tx.Create(&created).Error
		if cerr == nil {
			return true, nil
		}
		if !isDuplicateKey(cerr) {
			return false, cerr
		}
		// Lost a concurrent first-view race; the row exists now, treat
		// this call as a repeat view.
		if err := tx.Where("video_id = ? AND user_id = ?", videoID, viewerID).First(&view).Error; err != nil {
			return false, err
		}
	} else if err != nil {
		return false, err
	}
	return refreshIfCooledDown(tx, &view, now, cooldown)
}

func admitAnonymous(tx *gorm.DB, videoID uint, ipAddress string, now time.Time, cooldown time.Duration) (bool, error) {
	// No uniqueness constraint here: shared addresses (NAT) make collisions
	// expected, and a rare concurrent double count is accepted.
	var view models.View
	err := tx.Where("video_id = ? AND ip_address = ? AND user_id IS NULL", videoID, ipAddress).
		Order("last_viewed_at DESC").First(&view).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := models.View{VideoID: videoID, IPAddress: ipAddress, LastViewedAt: now}
		if cerr := tx.Create(&created).Error; cerr != nil {
			return false, cerr
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	// A stale row is refreshed in place, mirroring the authenticated path,
	// so there stays at most one live row per (video, ip).
	return refreshIfCooledDown(tx, &view, now, cooldown)
}

// refreshIfCooledDown admits the view and moves the row's timestamp to now
// when the cooldown has elapsed; inside the window it rejects with no mutation.
func refreshIfCooledDown(tx *gorm.DB, view *models.View, now time.Time, cooldown time.Duration) (bool, error) {
	if now.Sub(view.LastViewedAt) < cooldown {
		return false, nil
	}
	if err := tx.Model(view).UpdateColumn("last_viewed_at", now).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ReconcileViews recomputes the cached counter from the ledger: the counter
// becomes the number of ledger rows referencing the video, each counted once
// regardless of timestamp refreshes. Idempotent.
func ReconcileViews(db *gorm.DB, videoID uint) (int64, error) {
	var video models.Video
	if err := db.Select("id").First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrVideoNotFound
		}
		return 0, err
	}

	var count int64
	if err := db.Model(&models.View{}).Where("video_id = ?", videoID).Count(&count).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&models.Video{}).Where("id = ?", videoID).
		UpdateColumn("views", count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// isDuplicateKey reports whether err is a unique-constraint violation.
// GORM translates driver errors when TranslateError is on; the string checks
// cover MySQL and SQLite drivers where translation is unavailable.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
