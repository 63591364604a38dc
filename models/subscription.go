package models

import "time"

// Subscription links a subscriber to a channel (both users).
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_sub_pair" json:"subscriber_id"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:idx_sub_pair;index" json:"channel_id"`
	CreatedAt    time.Time `json:"created_at"`
	Subscriber   User      `gorm:"foreignKey:SubscriberID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Channel      User      `gorm:"foreignKey:ChannelID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
