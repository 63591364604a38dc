package models

import "time"

// Like records a user liking exactly one target: a video, a comment or a
// tweet. The partial unique indexes give toggle semantics per (user, target);
// NULL columns for the other two targets never collide.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_video;uniqueIndex:idx_likes_user_comment;uniqueIndex:idx_likes_user_tweet" json:"user_id"`
	VideoID   *uint     `gorm:"index;uniqueIndex:idx_likes_user_video" json:"video_id"`
	CommentID *uint     `gorm:"index;uniqueIndex:idx_likes_user_comment" json:"comment_id"`
	TweetID   *uint     `gorm:"index;uniqueIndex:idx_likes_user_tweet" json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`
}
