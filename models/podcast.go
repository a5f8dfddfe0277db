package models

import (
	"time"
)

// Podcast is the discoverable item. LikeCount, AverageRating and RatingCount are
// caches owned by the like and rating paths in services; nothing else writes them.
type Podcast struct {
	ID             string  `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title          string  `gorm:"type:varchar(255);not null" json:"title"`
	Description    string  `gorm:"type:text" json:"description"`
	AuthorID       string  `gorm:"type:varchar(64);not null;index" json:"author_id"`
	AuthorName     string  `gorm:"type:varchar(255)" json:"author"`
	AuthorImageURL string  `gorm:"type:text" json:"author_image_url"`
	VoiceType      string  `gorm:"type:varchar(50)" json:"voice_type"`
	VoicePrompt    string  `gorm:"type:text" json:"voice_prompt"`
	ImagePrompt    string  `gorm:"type:text" json:"image_prompt"`
	Category       string  `gorm:"type:varchar(100);index" json:"category"`
	Language       string  `gorm:"type:varchar(20);index" json:"language"`
	AudioURL       string  `gorm:"type:text" json:"audio_url"`
	AudioStorageID string  `gorm:"type:text" json:"audio_storage_id"`
	AudioDuration  float64 `json:"audio_duration"`
	ImageURL       string  `gorm:"type:text" json:"image_url"`
	ImageStorageID string  `gorm:"type:text" json:"image_storage_id"`

	// Thống kê
	Views         int64   `gorm:"default:0" json:"views"`
	LikeCount     int64   `gorm:"default:0" json:"like_count"`
	AverageRating float64 `gorm:"default:0" json:"average_rating"`
	RatingCount   int64   `gorm:"default:0" json:"rating_count"`

	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"created_at"`
}
