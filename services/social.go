package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

func (s *Service) Follow(ctx context.Context, follower models.User, followeeID string) error {
	if follower.ID == followeeID {
		return invalid("you cannot follow yourself")
	}

	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(tx, followeeID); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Follow{}).
			Where("follower_id = ? AND followee_id = ?", follower.ID, followeeID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: already following", ErrConflict)
		}
		return tx.Create(&models.Follow{
			ID:         uuid.NewString(),
			FollowerID: follower.ID,
			FolloweeID: followeeID,
		}).Error
	})
	if err != nil {
		return err
	}

	s.notify(ctx, models.Notification{
		UserID:  followeeID,
		ActorID: follower.ID,
		Action:  models.ActionFollow,
		Message: fmt.Sprintf("%s started following you", displayName(follower)),
	})
	return nil
}

func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	res := s.db(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: not following %q", ErrNotFound, followeeID)
	}
	return nil
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var n int64
	err := s.db(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&n).Error
	return n > 0, err
}

// Followers lists the users following userID.
func (s *Service) Followers(ctx context.Context, userID string) ([]models.User, error) {
	out := []models.User{}
	err := s.db(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&out).Error
	return out, err
}

// Following lists the users userID follows.
func (s *Service) Following(ctx context.Context, userID string) ([]models.User, error) {
	out := []models.User{}
	err := s.db(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&out).Error
	return out, err
}

type CreatorSummary struct {
	User         models.User      `json:"user"`
	PodcastCount int64            `json:"podcast_count"`
	TotalViews   int64            `json:"total_views"`
	Followers    int64            `json:"followers"`
	Podcasts     []models.Podcast `json:"podcasts"`
}

// TopCreators ranks authors by number of podcasts, then by total views.
func (s *Service) TopCreators(ctx context.Context, limit int) ([]CreatorSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var rows []struct {
		AuthorID     string
		PodcastCount int64
		TotalViews   int64
	}
	err := s.db(ctx).Model(&models.Podcast{}).
		Select("author_id, COUNT(*) AS podcast_count, COALESCE(SUM(views), 0) AS total_views").
		Group("author_id").
		Order("podcast_count DESC, total_views DESC, author_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]CreatorSummary, 0, len(rows))
	for _, r := range rows {
		user, err := findUser(s.db(ctx), r.AuthorID)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		sum := CreatorSummary{User: user, PodcastCount: r.PodcastCount, TotalViews: r.TotalViews}
		if err := s.db(ctx).Model(&models.Follow{}).Where("followee_id = ?", user.ID).Count(&sum.Followers).Error; err != nil {
			return nil, err
		}
		if err := s.db(ctx).Where("author_id = ?", user.ID).Order("created_at DESC").Find(&sum.Podcasts).Error; err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}
