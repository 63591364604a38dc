package models

import "time"

// Playlist is a user-owned ordered collection of videos.
type Playlist struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UserID       uint            `gorm:"index;not null" json:"user_id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	ThumbnailURL string          `gorm:"size:1024" json:"thumbnail_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Entries      []PlaylistVideo `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"entries,omitempty"`
}

// PlaylistVideo is one membership row; Position preserves insertion order.
type PlaylistVideo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlaylistID uint      `gorm:"not null;uniqueIndex:idx_playlist_video" json:"playlist_id"`
	VideoID    uint      `gorm:"not null;uniqueIndex:idx_playlist_video;index" json:"video_id"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"created_at"`
	Video      Video     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"video"`
}
