package models

import "time"

const (
	ActionNewPodcast = "new_podcast"
	ActionLike       = "like"
	ActionRating     = "rating"
	ActionComment    = "comment"
	ActionFollow     = "follow"
)

type Notification struct {
	ID        string     `gorm:"type:varchar(32);primaryKey" json:"id"`
	UserID    string     `gorm:"type:varchar(64);not null;index" json:"user_id"` // user nhận notification
	ActorID   string     `gorm:"type:varchar(64)" json:"actor_id,omitempty"`
	PodcastID string     `gorm:"type:varchar(36)" json:"podcast_id,omitempty"`
	Action    string     `gorm:"type:varchar(32)" json:"action"`
	Message   string     `gorm:"type:text" json:"message"`
	IsRead    bool       `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}
