package models

import "time"

// WatchHistory keeps one row per (user, video); re-watching refreshes
// WatchedAt instead of appending.
type WatchHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_history_user_video" json:"user_id"`
	VideoID   uint      `gorm:"not null;uniqueIndex:idx_history_user_video;index" json:"video_id"`
	WatchedAt time.Time `gorm:"not null;index" json:"watched_at"`
	Video     Video     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"video"`
}

// WatchLater is a toggleable per-user queue of videos.
type WatchLater struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_watch_later_user_video" json:"user_id"`
	VideoID   uint      `gorm:"not null;uniqueIndex:idx_watch_later_user_video;index" json:"video_id"`
	CreatedAt time.Time `json:"created_at"`
	Video     Video     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"video"`
}
