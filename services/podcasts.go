package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/discovery"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/metrics"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

// FileInput is an uploaded file.
type FileInput struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type CreatePodcastInput struct {
	Title       string
	Description string
	Category    string
	Language    string
	VoiceType   string
	VoicePrompt string
	ImagePrompt string

	// Audio, when set, is stored as is; otherwise VoiceType and VoicePrompt
	// are sent to the Generator.
	Audio         *FileInput
	AudioDuration float64

	// Image is optional; ImagePrompt is used when it is missing.
	Image *FileInput
}

// CreatePodcast stores the media, inserts the podcast with zeroed engagement
// fields and notifies the author's followers.
func (s *Service) CreatePodcast(ctx context.Context, author models.User, in CreatePodcastInput) (models.Podcast, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return models.Podcast{}, invalid("title is required")
	}
	if in.Category == "" {
		return models.Podcast{}, invalid("category is required")
	}
	if err := s.requireActiveCategory(ctx, in.Category); err != nil {
		return models.Podcast{}, err
	}

	id := uuid.NewString()

	audio, err := s.audioFor(ctx, id, in)
	if err != nil {
		return models.Podcast{}, err
	}
	image, err := s.imageFor(ctx, id, in)
	if err != nil {
		s.releaseBlobs(ctx, audio.StorageID)
		return models.Podcast{}, err
	}

	duration := audio.Duration
	if in.Audio != nil {
		duration = in.AudioDuration
	}

	podcast := models.Podcast{
		ID:             id,
		Title:          in.Title,
		Description:    strings.TrimSpace(in.Description),
		AuthorID:       author.ID,
		AuthorName:     author.Name,
		AuthorImageURL: author.ImageURL,
		VoiceType:      in.VoiceType,
		VoicePrompt:    in.VoicePrompt,
		ImagePrompt:    in.ImagePrompt,
		Category:       in.Category,
		Language:       in.Language,
		AudioURL:       audio.URL,
		AudioStorageID: audio.StorageID,
		AudioDuration:  duration,
		ImageURL:       image.URL,
		ImageStorageID: image.StorageID,
		CreatedAt:      s.Now(),
	}

	if err := s.db(ctx).Create(&podcast).Error; err != nil {
		s.releaseBlobs(ctx, audio.StorageID, image.StorageID)
		return models.Podcast{}, fmt.Errorf("create podcast: %w", err)
	}
	metrics.PodcastsCreated.Inc()

	logging.Info().
		Str("podcast_id", podcast.ID).
		Str("author_id", author.ID).
		Msg("podcast created")

	s.notifyFollowers(ctx, author, podcast)
	return podcast, nil
}

func (s *Service) requireActiveCategory(ctx context.Context, slug string) error {
	var n int64
	err := s.db(ctx).Model(&models.Category{}).
		Where("slug = ? AND active = ?", slug, true).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n == 0 {
		return invalid("unknown category %q", slug)
	}
	return nil
}

func (s *Service) audioFor(ctx context.Context, id string, in CreatePodcastInput) (Asset, error) {
	if in.Audio != nil {
		if s.Blobs == nil {
			return Asset{}, fmt.Errorf("%w: file storage is not configured", ErrUnavailable)
		}
		return s.Blobs.Put(ctx, blobName("audio", id, in.Audio.Name), in.Audio.ContentType, in.Audio.Body)
	}
	if in.VoiceType == "" || in.VoicePrompt == "" {
		return Asset{}, invalid("an audio file or a voice type and prompt is required")
	}
	if s.Generator == nil {
		return Asset{}, fmt.Errorf("%w: audio generation is not configured", ErrUnavailable)
	}
	return s.Generator.GenerateAudio(ctx, in.VoiceType, in.VoicePrompt)
}

func (s *Service) imageFor(ctx context.Context, id string, in CreatePodcastInput) (Asset, error) {
	switch {
	case in.Image != nil:
		if s.Blobs == nil {
			return Asset{}, fmt.Errorf("%w: file storage is not configured", ErrUnavailable)
		}
		return s.Blobs.Put(ctx, blobName("images", id, in.Image.Name), in.Image.ContentType, in.Image.Body)
	case in.ImagePrompt != "" && s.Generator != nil:
		return s.Generator.GenerateThumbnail(ctx, in.ImagePrompt)
	}
	return Asset{}, nil
}

func blobName(dir, id, filename string) string {
	return dir + "/" + id + path.Ext(filename)
}

// releaseBlobs deletes stored files. Failures are logged and counted.
func (s *Service) releaseBlobs(ctx context.Context, storageIDs ...string) {
	if s.Blobs == nil {
		return
	}
	for _, id := range storageIDs {
		if id == "" {
			continue
		}
		if err := s.Blobs.Delete(ctx, id); err != nil {
			metrics.BlobReleaseFailures.Inc()
			logging.Warn().Err(err).Str("storage_id", id).Msg("failed to release stored file")
		}
	}
}

// GetPodcast returns the podcast and, when countView is set, counts a view.
func (s *Service) GetPodcast(ctx context.Context, id string, countView bool) (models.Podcast, error) {
	if countView {
		res := s.db(ctx).Model(&models.Podcast{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return models.Podcast{}, res.Error
		}
		if res.RowsAffected == 0 {
			return models.Podcast{}, fmt.Errorf("%w: podcast %q", ErrNotFound, id)
		}
	}
	return findPodcast(s.db(ctx), id)
}

// DeletePodcast removes the podcast and everything hanging off it. Only the
// author or an admin may do this.
func (s *Service) DeletePodcast(ctx context.Context, actor models.User, id string) error {
	var podcast models.Podcast
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		podcast, err = findPodcast(tx, id)
		if err != nil {
			return err
		}
		if !canModify(actor, podcast.AuthorID) {
			return fmt.Errorf("%w: only the author can delete this podcast", ErrForbidden)
		}

		for _, dep := range []any{
			&models.Like{},
			&models.Rating{},
			&models.Comment{},
			&models.ListeningHistory{},
			&models.Notification{},
		} {
			if err := tx.Where("podcast_id = ?", id).Delete(dep).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Podcast{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	s.releaseBlobs(ctx, podcast.AudioStorageID, podcast.ImageStorageID)
	logging.Info().Str("podcast_id", id).Str("actor_id", actor.ID).Msg("podcast deleted")
	return nil
}

// Snapshot loads the whole collection for the discovery core.
func (s *Service) Snapshot(ctx context.Context) ([]models.Podcast, error) {
	var items []models.Podcast
	if err := s.db(ctx).Order("created_at DESC, id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load podcasts: %w", err)
	}
	return items, nil
}

// Discover runs the filter/sort pipeline over the current collection.
func (s *Service) Discover(ctx context.Context, q discovery.Query) ([]models.Podcast, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out, err := discovery.Filter(items, q)
	if err != nil {
		return nil, err
	}
	metrics.RecordDiscoveryQuery(string(q.Sort))
	return out, nil
}

// Similar ranks the collection against podcast id. The category and
// language facets of q narrow the candidates.
func (s *Service) Similar(ctx context.Context, id string, q discovery.Query, limit int) ([]discovery.Scored, error) {
	items, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.SimilarLimit
	}
	metrics.SimilarityCandidates.Observe(float64(len(items)))

	return discovery.FindSimilar(items, id, q, discovery.SimilarOptions{
		Limit: limit,
		Rand:  s.Rand,
		Now:   s.Now(),
	})
}
