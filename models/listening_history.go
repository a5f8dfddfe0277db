package models

import (
	"time"
)

type ListeningHistory struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string `gorm:"type:varchar(64);not null;uniqueIndex:idx_user_podcast" json:"user_id"`
	PodcastID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_podcast" json:"podcast_id"`
	Position  int    `gorm:"default:0" json:"position"`

	ListenedAt time.Time `json:"listened_at"` // Lần nghe gần nhất

	Podcast Podcast `gorm:"foreignKey:PodcastID;references:ID" json:"podcast"`
}

func (ListeningHistory) TableName() string {
	return "listening_histories"
}
