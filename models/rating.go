package models

import "time"

// Rating is unique per (user, podcast); a second submission updates Score.
type Rating struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_rating_user_podcast" json:"user_id"`
	PodcastID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_rating_user_podcast;index" json:"podcast_id"`
	Score     int       `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

func (Rating) TableName() string {
	return "ratings"
}
