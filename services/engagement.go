package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

const maxCommentLength = 2000

// ToggleLike likes the podcast, or unlikes it when userID already did. The
// like row and the cached LikeCount change in the same transaction; the
// count is recomputed from the rows rather than incremented.
func (s *Service) ToggleLike(ctx context.Context, user models.User, podcastID string) (liked bool, likeCount int64, err error) {
	var podcast models.Podcast
	err = s.db(ctx).Transaction(func(tx *gorm.DB) error {
		podcast, err = findPodcast(tx, podcastID)
		if err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND podcast_id = ?", user.ID, podcastID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			like := models.Like{ID: uuid.NewString(), UserID: user.ID, PodcastID: podcastID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			liked = true
		}

		if err := tx.Model(&models.Like{}).Where("podcast_id = ?", podcastID).Count(&likeCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Podcast{}).Where("id = ?", podcastID).
			UpdateColumn("like_count", likeCount).Error
	})
	if err != nil {
		return false, 0, err
	}

	if liked {
		s.notify(ctx, models.Notification{
			UserID:    podcast.AuthorID,
			ActorID:   user.ID,
			PodcastID: podcast.ID,
			Action:    models.ActionLike,
			Message:   fmt.Sprintf("%s liked %q", displayName(user), podcast.Title),
		})
	}
	return liked, likeCount, nil
}

// HasLiked reports whether userID likes podcastID.
func (s *Service) HasLiked(ctx context.Context, userID, podcastID string) (bool, error) {
	var n int64
	err := s.db(ctx).Model(&models.Like{}).
		Where("user_id = ? AND podcast_id = ?", userID, podcastID).
		Count(&n).Error
	return n > 0, err
}

// RatePodcast stores the user's score, replacing an earlier one, and
// recomputes AverageRating and RatingCount in the same transaction.
func (s *Service) RatePodcast(ctx context.Context, user models.User, podcastID string, score int, comment string) (models.Rating, models.Podcast, error) {
	if score < 1 || score > 5 {
		return models.Rating{}, models.Podcast{}, invalid("score must be between 1 and 5")
	}

	var (
		rating  models.Rating
		podcast models.Podcast
		first   bool
	)
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		podcast, err = findPodcast(tx, podcastID)
		if err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND podcast_id = ?", user.ID, podcastID).First(&rating).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			first = true
			rating = models.Rating{
				ID:        uuid.NewString(),
				UserID:    user.ID,
				PodcastID: podcastID,
				Score:     score,
				Comment:   strings.TrimSpace(comment),
			}
			if err := tx.Omit(clause.Associations).Create(&rating).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			rating.Score = score
			rating.Comment = strings.TrimSpace(comment)
			if err := tx.Omit(clause.Associations).Save(&rating).Error; err != nil {
				return err
			}
		}

		var agg struct {
			Avg sql.NullFloat64
			Cnt int64
		}
		err = tx.Model(&models.Rating{}).
			Select("AVG(score) AS avg, COUNT(*) AS cnt").
			Where("podcast_id = ?", podcastID).
			Scan(&agg).Error
		if err != nil {
			return err
		}

		podcast.AverageRating = agg.Avg.Float64
		podcast.RatingCount = agg.Cnt
		return tx.Model(&models.Podcast{}).Where("id = ?", podcastID).
			UpdateColumns(map[string]any{
				"average_rating": podcast.AverageRating,
				"rating_count":   podcast.RatingCount,
			}).Error
	})
	if err != nil {
		return models.Rating{}, models.Podcast{}, err
	}

	if first {
		s.notify(ctx, models.Notification{
			UserID:    podcast.AuthorID,
			ActorID:   user.ID,
			PodcastID: podcast.ID,
			Action:    models.ActionRating,
			Message:   fmt.Sprintf("%s rated %q %d/5", displayName(user), podcast.Title, score),
		})
	}
	return rating, podcast, nil
}

// ListRatings returns the ratings of a podcast with their authors, newest
// first.
func (s *Service) ListRatings(ctx context.Context, podcastID string) ([]models.Rating, error) {
	if _, err := findPodcast(s.db(ctx), podcastID); err != nil {
		return nil, err
	}
	out := []models.Rating{}
	err := s.db(ctx).Preload("User").
		Where("podcast_id = ?", podcastID).
		Order("updated_at DESC").
		Find(&out).Error
	return out, err
}

func (s *Service) AddComment(ctx context.Context, user models.User, podcastID, body string) (models.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Comment{}, invalid("comment is empty")
	}
	if utf8.RuneCountInString(body) > maxCommentLength {
		return models.Comment{}, invalid("comment is longer than %d characters", maxCommentLength)
	}

	podcast, err := findPodcast(s.db(ctx), podcastID)
	if err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		PodcastID:  podcastID,
		UserID:     user.ID,
		AuthorName: user.Name,
		AuthorImg:  user.ImageURL,
		Body:       body,
		CreatedAt:  s.Now(),
	}
	if err := s.db(ctx).Create(&comment).Error; err != nil {
		return models.Comment{}, fmt.Errorf("create comment: %w", err)
	}

	s.notify(ctx, models.Notification{
		UserID:    podcast.AuthorID,
		ActorID:   user.ID,
		PodcastID: podcast.ID,
		Action:    models.ActionComment,
		Message:   fmt.Sprintf("%s commented on %q", displayName(user), podcast.Title),
	})
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, podcastID string) ([]models.Comment, error) {
	out := []models.Comment{}
	err := s.db(ctx).Where("podcast_id = ?", podcastID).
		Order("created_at DESC, id").
		Find(&out).Error
	return out, err
}

// DeleteComment is allowed for the comment author and admins.
func (s *Service) DeleteComment(ctx context.Context, actor models.User, commentID string) error {
	var c models.Comment
	if err := s.db(ctx).First(&c, "id = ?", commentID).Error; err != nil {
		return notFound(err, "comment %q", commentID)
	}
	if !canModify(actor, c.UserID) {
		return fmt.Errorf("%w: only the author can delete this comment", ErrForbidden)
	}
	return s.db(ctx).Delete(&models.Comment{}, "id = ?", commentID).Error
}
