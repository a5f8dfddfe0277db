package models

import "time"

// Like rows are the source of truth for Podcast.LikeCount.
type Like struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_like_user_podcast" json:"user_id"`
	PodcastID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_like_user_podcast;index" json:"podcast_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
