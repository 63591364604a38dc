package models

import "time"

// View is one row of the view ledger, the source of truth behind
// Video.Views. Authenticated viewers get at most one row per video,
// enforced by the unique (video_id, user_id) index; the row's timestamp is
// refreshed when a re-view is admitted after the cooldown. Anonymous viewers
// are tracked per IP with UserID NULL; repeated NULLs never violate the
// unique index, so those rows are deduplicated only by lookup.
type View struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	VideoID      uint      `gorm:"not null;uniqueIndex:idx_views_video_user;index:idx_views_video_ip,priority:1" json:"video_id"`
	UserID       *uint     `gorm:"uniqueIndex:idx_views_video_user" json:"user_id"`
	IPAddress    string    `gorm:"size:45;index:idx_views_video_ip,priority:2" json:"ip_address"`
	LastViewedAt time.Time `gorm:"not null;index:idx_views_video_ip,priority:3" json:"last_viewed_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
