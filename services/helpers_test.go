package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/config"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/discovery"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
)

var testNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

type recordingHub struct {
	mu            sync.Mutex
	notifications []models.Notification
	badges        map[string]int64
}

func (h *recordingHub) SendNotification(n models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notifications = append(h.notifications, n)
}

func (h *recordingHub) SendBadge(userID string, count int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.badges == nil {
		h.badges = make(map[string]int64)
	}
	h.badges[userID] = count
}

func (h *recordingHub) sentTo(userID string) []models.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []models.Notification
	for _, n := range h.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (h *recordingHub) badge(userID string) int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.badges[userID]
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failPut string // Put fails for names with this prefix
}

func (m *memBlobs) Put(_ context.Context, name, _ string, r io.Reader) (Asset, error) {
	if m.failPut != "" && strings.HasPrefix(name, m.failPut) {
		return Asset{}, errors.New("storage down")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[name] = data
	return Asset{URL: "https://cdn.test/" + name, StorageID: name}, nil
}

func (m *memBlobs) Delete(_ context.Context, storageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storageID)
	m.deleted = append(m.deleted, storageID)
	return nil
}

type stubGenerator struct {
	audioCalls int
	voice      string
}

func (g *stubGenerator) GenerateAudio(_ context.Context, voiceType, _ string) (Asset, error) {
	g.audioCalls++
	g.voice = voiceType
	return Asset{URL: "https://gen.test/audio.mp3", StorageID: "generated/audio.mp3", Duration: 93.5}, nil
}

func (g *stubGenerator) GenerateThumbnail(context.Context, string) (Asset, error) {
	return Asset{URL: "https://gen.test/thumb.png", StorageID: "generated/thumb.png"}, nil
}

type fixture struct {
	svc   *Service
	hub   *recordingHub
	blobs *memBlobs
	gen   *stubGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := config.ConnectDB(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("ConnectDB() error = %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	ids, err := utils.NewIDGenerator(1)
	if err != nil {
		t.Fatalf("NewIDGenerator() error = %v", err)
	}

	f := &fixture{hub: &recordingHub{}, blobs: &memBlobs{}, gen: &stubGenerator{}}
	f.svc = New(db, ids)
	f.svc.Hub = f.hub
	f.svc.Blobs = f.blobs
	f.svc.Generator = f.gen
	f.svc.Now = func() time.Time { return testNow }
	f.svc.Rand = discovery.NoJitter
	return f
}

func (f *fixture) user(t *testing.T, name string, mutate ...func(u *models.User)) models.User {
	t.Helper()
	u := models.User{
		ID:       "u-" + strings.ToLower(name),
		Email:    strings.ToLower(name) + "@example.com",
		Name:     name,
		Role:     models.RoleUser,
		Provider: models.ProviderLocal,
		Active:   true,
	}
	for _, m := range mutate {
		m(&u)
	}
	if err := f.svc.DB.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) category(t *testing.T, slug string) {
	t.Helper()
	c := models.Category{ID: uuid.NewString(), Name: slug, Slug: slug, Active: true}
	if err := f.svc.DB.Create(&c).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
}

// podcast inserts a podcast directly, bypassing CreatePodcast.
func (f *fixture) podcast(t *testing.T, author models.User, title string, mutate ...func(p *models.Podcast)) models.Podcast {
	t.Helper()
	p := models.Podcast{
		ID:         uuid.NewString(),
		Title:      title,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Category:   "technology",
		Language:   "en",
		AudioURL:   "https://cdn.test/" + title + ".mp3",
		CreatedAt:  testNow.Add(-time.Hour),
	}
	for _, m := range mutate {
		m(&p)
	}
	if err := f.svc.DB.Create(&p).Error; err != nil {
		t.Fatalf("create podcast: %v", err)
	}
	return p
}

func (f *fixture) reload(t *testing.T, id string) models.Podcast {
	t.Helper()
	var p models.Podcast
	if err := f.svc.DB.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload podcast %s: %v", id, err)
	}
	return p
}

func fileInput(name, body string) *FileInput {
	return &FileInput{Name: name, ContentType: "application/octet-stream", Body: bytes.NewBufferString(body)}
}
