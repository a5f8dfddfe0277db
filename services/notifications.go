package services

import (
	"context"
	"fmt"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

// Notify stores n for n.UserID, pushes it to the user's open sockets and
// refreshes their unread badge.
func (s *Service) Notify(ctx context.Context, n models.Notification) (models.Notification, error) {
	if n.UserID == "" || n.Action == "" {
		return n, invalid("notification needs a recipient and an action")
	}

	id, err := s.IDs.Next()
	if err != nil {
		return n, fmt.Errorf("notification id: %w", err)
	}
	n.ID = id
	n.IsRead = false
	n.ReadAt = nil
	n.CreatedAt = s.Now()

	if err := s.db(ctx).Create(&n).Error; err != nil {
		return n, fmt.Errorf("create notification: %w", err)
	}

	s.Hub.SendNotification(n)
	s.pushBadge(ctx, n.UserID)
	return n, nil
}

// notify is Notify for side effects of other operations; errors are logged.
func (s *Service) notify(ctx context.Context, n models.Notification) {
	if n.UserID == "" || n.UserID == n.ActorID {
		return
	}
	if _, err := s.Notify(ctx, n); err != nil {
		logging.Warn().Err(err).
			Str("user_id", n.UserID).
			Str("action", n.Action).
			Msg("failed to send notification")
	}
}

func (s *Service) notifyFollowers(ctx context.Context, author models.User, podcast models.Podcast) {
	var followerIDs []string
	err := s.db(ctx).Model(&models.Follow{}).
		Where("followee_id = ?", author.ID).
		Pluck("follower_id", &followerIDs).Error
	if err != nil {
		logging.Warn().Err(err).Str("author_id", author.ID).Msg("failed to load followers")
		return
	}

	for _, id := range followerIDs {
		s.notify(ctx, models.Notification{
			UserID:    id,
			ActorID:   author.ID,
			PodcastID: podcast.ID,
			Action:    models.ActionNewPodcast,
			Message:   fmt.Sprintf("%s published %q", displayName(author), podcast.Title),
		})
	}
}

func (s *Service) pushBadge(ctx context.Context, userID string) {
	count, err := s.UnreadCount(ctx, userID)
	if err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("failed to count unread notifications")
		return
	}
	s.Hub.SendBadge(userID, count)
}

// Notifications returns the newest notifications of userID first.
func (s *Service) Notifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	q := s.db(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []models.Notification{}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.db(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	now := s.Now()
	res := s.db(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %q", ErrNotFound, id)
	}
	s.pushBadge(ctx, userID)
	return nil
}

// MarkAllRead returns how many notifications changed state.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	now := s.Now()
	res := s.db(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	s.pushBadge(ctx, userID)
	return res.RowsAffected, nil
}

func (s *Service) DeleteNotification(ctx context.Context, userID, id string) error {
	res := s.db(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %q", ErrNotFound, id)
	}
	s.pushBadge(ctx, userID)
	return nil
}

func displayName(u models.User) string {
	if u.Name != "" {
		return u.Name
	}
	return "Someone"
}
