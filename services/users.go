package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/logging"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
)

const minPasswordLength = 6

var validate = validator.New()

// Identity is a user as reported by an external identity provider.
type Identity struct {
	ID       string
	Email    string
	Name     string
	ImageURL string
}

// UpsertExternalUser returns the local record for an identity provider
// login, creating it on first sight and refreshing name and avatar after.
func (s *Service) UpsertExternalUser(ctx context.Context, id Identity, provider string) (models.User, error) {
	if id.ID == "" {
		return models.User{}, invalid("identity without subject")
	}

	var user models.User
	err := s.db(ctx).First(&user, "id = ?", id.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			ID:       id.ID,
			Email:    strings.ToLower(id.Email),
			Name:     id.Name,
			ImageURL: id.ImageURL,
			Role:     models.RoleUser,
			Provider: provider,
			Active:   true,
		}
		if user.Email == "" {
			user.Email = id.ID + "@" + provider + ".invalid"
		}
		if err := s.db(ctx).Create(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("create user: %w", err)
		}
		logging.Info().Str("user_id", user.ID).Str("provider", provider).Msg("user created from identity provider")
		return user, nil
	}
	if err != nil {
		return models.User{}, err
	}

	changes := map[string]any{}
	if id.Name != "" && id.Name != user.Name {
		changes["name"] = id.Name
		user.Name = id.Name
	}
	if id.ImageURL != "" && id.ImageURL != user.ImageURL {
		changes["image_url"] = id.ImageURL
		user.ImageURL = id.ImageURL
	}
	if len(changes) == 0 {
		return user, nil
	}

	// podcasts giữ bản sao tên và ảnh tác giả
	err = s.db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Model(&models.Podcast{}).Where("author_id = ?", user.ID).
			UpdateColumns(map[string]any{"author_name": user.Name, "author_image_url": user.ImageURL}).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Register creates a local account.
func (s *Service) Register(ctx context.Context, email, password, name string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email"); err != nil {
		return models.User{}, invalid("email %q is not valid", email)
	}
	if len(password) < minPasswordLength {
		return models.User{}, invalid("password must have at least %d characters", minPasswordLength)
	}

	var n int64
	if err := s.db(ctx).Model(&models.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return models.User{}, err
	}
	if n > 0 {
		return models.User{}, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:       uuid.NewString(),
		Email:    email,
		Password: string(hash),
		Name:     strings.TrimSpace(name),
		Role:     models.RoleUser,
		Provider: models.ProviderLocal,
		Active:   true,
	}
	if err := s.db(ctx).Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate checks local credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.db(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("%w: wrong email or password", ErrUnauthorized)
	}
	if err != nil {
		return models.User{}, err
	}

	if user.Provider != models.ProviderLocal || user.Password == "" {
		return models.User{}, fmt.Errorf("%w: account signs in with %s", ErrUnauthorized, user.Provider)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.User{}, fmt.Errorf("%w: wrong email or password", ErrUnauthorized)
	}
	if !user.Active {
		return models.User{}, fmt.Errorf("%w: account is disabled", ErrForbidden)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (models.User, error) {
	return findUser(s.db(ctx), id)
}

// ProfileUpdate holds the fields a user may change; nil means unchanged.
type ProfileUpdate struct {
	Name     *string `json:"name"`
	ImageURL *string `json:"image_url"`
}

// UpdateProfile also refreshes the author snapshot on the user's podcasts.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (models.User, error) {
	var user models.User
	err := s.db(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUser(tx, userID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("name must not be empty")
			}
			user.Name = name
		}
		if in.ImageURL != nil {
			user.ImageURL = strings.TrimSpace(*in.ImageURL)
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			Updates(map[string]any{"name": user.Name, "image_url": user.ImageURL}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Podcast{}).Where("author_id = ?", userID).
			UpdateColumns(map[string]any{"author_name": user.Name, "author_image_url": user.ImageURL}).Error
	})
	return user, err
}

func (s *Service) SetRole(ctx context.Context, userID, role string) (models.User, error) {
	if role != models.RoleAdmin && role != models.RoleUser {
		return models.User{}, invalid("unknown role %q", role)
	}
	res := s.db(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return models.User{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.User{}, fmt.Errorf("%w: user %q", ErrNotFound, userID)
	}
	return findUser(s.db(ctx), userID)
}

type Stats struct {
	Users         int64 `json:"users"`
	Podcasts      int64 `json:"podcasts"`
	Likes         int64 `json:"likes"`
	Ratings       int64 `json:"ratings"`
	Comments      int64 `json:"comments"`
	Notifications int64 `json:"notifications"`
	TotalViews    int64 `json:"total_views"`
}

func (s *Service) AdminStats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &st.Users},
		{&models.Podcast{}, &st.Podcasts},
		{&models.Like{}, &st.Likes},
		{&models.Rating{}, &st.Ratings},
		{&models.Comment{}, &st.Comments},
		{&models.Notification{}, &st.Notifications},
	}
	for _, c := range counts {
		if err := s.db(ctx).Model(c.model).Count(c.dst).Error; err != nil {
			return st, err
		}
	}

	err := s.db(ctx).Model(&models.Podcast{}).
		Select("COALESCE(SUM(views), 0)").
		Scan(&st.TotalViews).Error
	return st, err
}
