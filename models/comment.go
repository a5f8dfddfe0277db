package models

import "time"

type Comment struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	PodcastID  string    `gorm:"type:varchar(36);not null;index" json:"podcast_id"`
	UserID     string    `gorm:"type:varchar(64);not null" json:"user_id"`
	AuthorName string    `gorm:"type:varchar(255)" json:"author"`
	AuthorImg  string    `gorm:"type:text" json:"author_image_url"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
