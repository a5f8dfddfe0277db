package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

func (s *Service) ListCategories(ctx context.Context, includeInactive bool) ([]models.Category, error) {
	q := s.db(ctx).Order("name")
	if !includeInactive {
		q = q.Where("active = ?", true)
	}
	out := []models.Category{}
	err := q.Find(&out).Error
	return out, err
}

// CreateCategory adds a category whose slug is derived from name. Podcasts
// refer to categories by slug.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, invalid("category name is required")
	}
	sl := slug.Make(name)
	if sl == "" {
		return models.Category{}, invalid("category name %q has no usable characters", name)
	}

	var n int64
	if err := s.db(ctx).Model(&models.Category{}).Where("slug = ?", sl).Count(&n).Error; err != nil {
		return models.Category{}, err
	}
	if n > 0 {
		return models.Category{}, fmt.Errorf("%w: category %q already exists", ErrConflict, sl)
	}

	c := models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        sl,
		Description: strings.TrimSpace(description),
		Active:      true,
	}
	if err := s.db(ctx).Create(&c).Error; err != nil {
		return models.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Service) SetCategoryActive(ctx context.Context, id string, active bool) (models.Category, error) {
	res := s.db(ctx).Model(&models.Category{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return models.Category{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Category{}, fmt.Errorf("%w: category %q", ErrNotFound, id)
	}

	var c models.Category
	err := s.db(ctx).First(&c, "id = ?", id).Error
	return c, err
}
