package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Asset is a stored or generated media file.
type Asset struct {
	URL       string  `json:"url"`
	StorageID string  `json:"storage_id"`
	Duration  float64 `json:"duration,omitempty"`
}

// BlobStore keeps uploaded audio and images.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, storageID string) error
}

// SupabaseStore talks to the Supabase storage REST API.
type SupabaseStore struct {
	baseURL string
	key     string
	bucket  string
	client  *http.Client
}

func NewSupabaseStore(baseURL, key, bucket string, timeout time.Duration) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		bucket:  bucket,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *SupabaseStore) objectURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(s.bucket), escapePath(name))
}

func (s *SupabaseStore) publicURL(name string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(s.bucket), escapePath(name))
}

func (s *SupabaseStore) Put(ctx context.Context, name, contentType string, r io.Reader) (Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(name), r)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: upload %s: %v", ErrUnavailable, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Asset{}, fmt.Errorf("%w: upload %s: status %d: %s", ErrUnavailable, name, resp.StatusCode, body)
	}

	return Asset{URL: s.publicURL(name), StorageID: name}, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, storageID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(storageID), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", storageID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("delete %s: status %d", storageID, resp.StatusCode)
	}
	return nil
}

func (s *SupabaseStore) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}

func escapePath(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
