package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

// RecordListen remembers the playback position of userID in a podcast.
// One row per (user, podcast); later calls move the position.
func (s *Service) RecordListen(ctx context.Context, userID, podcastID string, position int) (models.ListeningHistory, error) {
	if position < 0 {
		return models.ListeningHistory{}, invalid("position must not be negative")
	}
	if _, err := findPodcast(s.db(ctx), podcastID); err != nil {
		return models.ListeningHistory{}, err
	}

	h := models.ListeningHistory{
		ID:         uuid.NewString(),
		UserID:     userID,
		PodcastID:  podcastID,
		Position:   position,
		ListenedAt: s.Now(),
	}
	err := s.db(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "podcast_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"position", "listened_at"}),
	}).Create(&h).Error
	if err != nil {
		return models.ListeningHistory{}, err
	}

	var stored models.ListeningHistory
	err = s.db(ctx).
		Where("user_id = ? AND podcast_id = ?", userID, podcastID).
		First(&stored).Error
	return stored, err
}

// ListeningHistory returns the podcasts userID listened to, most recent
// first.
func (s *Service) ListeningHistory(ctx context.Context, userID string) ([]models.ListeningHistory, error) {
	out := []models.ListeningHistory{}
	err := s.db(ctx).Preload("Podcast").
		Where("user_id = ?", userID).
		Order("listened_at DESC").
		Find(&out).Error
	return out, err
}
