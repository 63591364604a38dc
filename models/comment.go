package models

import "time"

// Comment represents a comment on a video. A reply carries the ID of its
// parent comment; only one level of nesting is supported, replies always
// point at a top-level comment of the same video.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VideoID   uint      `gorm:"index;not null" json:"video_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Replies   []Comment `gorm:"foreignKey:ParentID" json:"replies,omitempty"`
}
