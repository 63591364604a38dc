package models

import "time"

// Video holds the metadata of an uploaded video. The file and thumbnail live
// on an external storage/CDN collaborator; only their URLs and public ids are
// kept here. Views is a cached counter over the View ledger: it is mutated
// only by the view admission path and by reconciliation.
type Video struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"index;not null" json:"user_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Description       string    `gorm:"type:text" json:"description"`
	VideoURL          string    `gorm:"size:1024;not null" json:"video_url"`
	ThumbnailURL      string    `gorm:"size:1024;not null" json:"thumbnail_url"`
	VideoPublicID     string    `gorm:"size:255" json:"-"`
	ThumbnailPublicID string    `gorm:"size:255" json:"-"`
	DurationSeconds   int       `gorm:"not null;default:0" json:"duration_seconds"`
	Views             int64     `gorm:"not null;default:0" json:"views"`
	IsPublished       bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	User              User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner"`
}
