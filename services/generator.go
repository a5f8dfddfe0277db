package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generator produces audio from a voice prompt and thumbnails from an image
// prompt. Results are already stored; only the Asset comes back.
type Generator interface {
	GenerateAudio(ctx context.Context, voiceType, prompt string) (Asset, error)
	GenerateThumbnail(ctx context.Context, prompt string) (Asset, error)
}

// HTTPGenerator calls an external generation service over JSON.
type HTTPGenerator struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGenerator(baseURL, apiKey string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGenerator) GenerateAudio(ctx context.Context, voiceType, prompt string) (Asset, error) {
	return g.call(ctx, "/audio", map[string]string{"voice": voiceType, "prompt": prompt})
}

func (g *HTTPGenerator) GenerateThumbnail(ctx context.Context, prompt string) (Asset, error) {
	return g.call(ctx, "/thumbnail", map[string]string{"prompt": prompt})
}

func (g *HTTPGenerator) call(ctx context.Context, path string, payload any) (Asset, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Asset{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Asset{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Asset{}, fmt.Errorf("%w: generation request failed: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Asset{}, fmt.Errorf("%w: generation status %d: %s", ErrUnavailable, resp.StatusCode, msg)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return Asset{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if asset.URL == "" {
		return Asset{}, fmt.Errorf("%w: generation returned no url", ErrUnavailable)
	}
	return asset, nil
}
