package models

import "time"

type Follow struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	FollowerID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FolloweeID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_follow_pair;index" json:"followee_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
