// Package services implements the application operations on top of gorm.
// Handlers call into a single Service; it owns every write to the cached
// engagement fields of models.Podcast.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/discovery"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("unavailable")
)

// Publisher pushes realtime events to connected clients.
type Publisher interface {
	SendNotification(n models.Notification)
	SendBadge(userID string, count int64)
}

type nopPublisher struct{}

func (nopPublisher) SendNotification(models.Notification) {}
func (nopPublisher) SendBadge(string, int64)              {}

type Service struct {
	DB        *gorm.DB
	Blobs     BlobStore
	Generator Generator
	Hub       Publisher
	IDs       *utils.IDGenerator

	Now  func() time.Time
	Rand discovery.RandomSource

	// SimilarLimit is used when a caller passes no limit.
	SimilarLimit int
}

// New returns a Service with realtime delivery disabled; assign Hub, Blobs
// and Generator to enable the corresponding features.
func New(db *gorm.DB, ids *utils.IDGenerator) *Service {
	return &Service{
		DB:           db,
		Hub:          nopPublisher{},
		IDs:          ids,
		Now:          time.Now,
		Rand:         discovery.DefaultSource,
		SimilarLimit: discovery.DefaultSimilarLimit,
	}
}

func (s *Service) db(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx)
}

// notFound converts gorm's missing-row error into ErrNotFound.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func findPodcast(tx *gorm.DB, id string) (models.Podcast, error) {
	var p models.Podcast
	if err := tx.First(&p, "id = ?", id).Error; err != nil {
		return p, notFound(err, "podcast %q", id)
	}
	return p, nil
}

func findUser(tx *gorm.DB, id string) (models.User, error) {
	var u models.User
	if err := tx.First(&u, "id = ?", id).Error; err != nil {
		return u, notFound(err, "user %q", id)
	}
	return u, nil
}

func canModify(actor models.User, ownerID string) bool {
	return actor.ID == ownerID || actor.Role == models.RoleAdmin
}
