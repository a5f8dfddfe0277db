package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/config"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/discovery"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/middleware"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/models"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/utils"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string]int
}

func (m *memBlobs) Put(_ context.Context, name, _ string, r io.Reader) (services.Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return services.Asset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string]int)
	}
	m.objects[name] = len(data)
	return services.Asset{URL: "https://cdn.test/" + name, StorageID: name}, nil
}

func (m *memBlobs) Delete(_ context.Context, storageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storageID)
	return nil
}

type app struct {
	t      *testing.T
	svc    *services.Service
	tokens *utils.TokenIssuer
	engine *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	db, err := config.ConnectDB(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("ConnectDB() error = %v", err)
	}
	ids, err := utils.NewIDGenerator(7)
	if err != nil {
		t.Fatalf("NewIDGenerator() error = %v", err)
	}
	tokens, err := utils.NewTokenIssuer("routes-secret", "soundnest-test", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	svc := services.New(db, ids)
	svc.Hub = hub
	svc.Blobs = &memBlobs{}
	svc.Rand = discovery.NoJitter

	r := gin.New()
	SetupRoutes(r, Deps{
		Service:   svc,
		Tokens:    tokens,
		Hub:       hub,
		Discovery: config.DiscoveryConfig{DefaultLimit: 50, MaxLimit: 200, SimilarLimit: 9, FeaturedSize: 5},
		Limiter:   middleware.NewRateLimiter(100, 100),
	})
	return &app{t: t, svc: svc, tokens: tokens, engine: r}
}

func (a *app) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// user registers an account and returns it with a signed token.
func (a *app) user(name string, admin bool) (models.User, string) {
	a.t.Helper()
	ctx := context.Background()
	u, err := a.svc.Register(ctx, strings.ToLower(name)+"@example.com", "secret123", name)
	if err != nil {
		a.t.Fatalf("Register(%s) error = %v", name, err)
	}
	if admin {
		if u, err = a.svc.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
			a.t.Fatalf("SetRole() error = %v", err)
		}
	}
	token, err := a.tokens.GenerateToken(u.ID, u.Role)
	if err != nil {
		a.t.Fatalf("GenerateToken() error = %v", err)
	}
	return u, token
}

func (a *app) podcast(author models.User, mutate func(p *models.Podcast)) models.Podcast {
	a.t.Helper()
	p := models.Podcast{
		ID:         uuid.NewString(),
		Title:      "Untitled",
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Category:   "technology",
		Language:   "en",
		CreatedAt:  time.Now().Add(-time.Hour),
	}
	if mutate != nil {
		mutate(&p)
	}
	if err := a.svc.DB.Create(&p).Error; err != nil {
		a.t.Fatalf("create podcast: %v", err)
	}
	return p
}

type listResponse struct {
	Data  []models.Podcast `json:"data"`
	Total int              `json:"total"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func titles(items []models.Podcast) []string {
	out := make([]string, len(items))
	for i, p := range items {
		out[i] = p.Title
	}
	return out
}

func TestPing(t *testing.T) {
	a := newApp(t)
	if w := a.do(http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
		t.Errorf("GET /ping = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("GET /health = %d: %s", w.Code, w.Body.String())
	}
	if w := a.do(http.MethodGet, "/metrics", "", nil); w.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d", w.Code)
	}
}

func TestListPodcasts(t *testing.T) {
	a := newApp(t)
	alice, _ := a.user("Alice", false)
	bob, _ := a.user("Bob", false)

	a.podcast(alice, func(p *models.Podcast) {
		p.Title = "Go in Practice"
		p.Views = 10
	})
	a.podcast(bob, func(p *models.Podcast) {
		p.Title = "Jazz Nights"
		p.Category = "music"
		p.Views = 500
	})
	a.podcast(bob, func(p *models.Podcast) {
		p.Title = "Tin tức"
		p.Language = "vi"
		p.Views = 50
	})

	tests := []struct {
		name  string
		query string
		code  int
		want  []string
	}{
		{name: "popular", query: "?sort=popular", code: http.StatusOK, want: []string{"Jazz Nights", "Tin tức", "Go in Practice"}},
		{name: "category facet", query: "?sort=popular&category=technology", code: http.StatusOK, want: []string{"Tin tức", "Go in Practice"}},
		{name: "comma separated facets", query: "?sort=popular&category=music,technology&language=en", code: http.StatusOK, want: []string{"Jazz Nights", "Go in Practice"}},
		{name: "author", query: "?sort=popular&author=" + alice.ID, code: http.StatusOK, want: []string{"Go in Practice"}},
		{name: "search", query: "?search=Jazz", code: http.StatusOK, want: []string{"Jazz Nights"}},
		{name: "limit", query: "?sort=popular&limit=1", code: http.StatusOK, want: []string{"Jazz Nights"}},
		{name: "unknown sort", query: "?sort=random", code: http.StatusBadRequest},
		{name: "bad limit", query: "?limit=-3", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodGet, "/api/podcasts"+tt.query, "", nil)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.code, w.Body.String())
			}
			if tt.code != http.StatusOK {
				return
			}
			got := titles(decode[listResponse](t, w).Data)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("titles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetPodcastCountsViews(t *testing.T) {
	a := newApp(t)
	alice, _ := a.user("Alice", false)
	p := a.podcast(alice, nil)

	for i := 0; i < 2; i++ {
		if w := a.do(http.MethodGet, "/api/podcasts/"+p.ID, "", nil); w.Code != http.StatusOK {
			t.Fatalf("GET podcast = %d", w.Code)
		}
	}
	got, err := a.svc.GetPodcast(context.Background(), p.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if got.Views != 2 {
		t.Errorf("views = %d, want 2", got.Views)
	}

	if w := a.do(http.MethodGet, "/api/podcasts/missing", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET missing podcast = %d, want 404", w.Code)
	}
}

func TestSimilarPodcasts(t *testing.T) {
	a := newApp(t)
	alice, _ := a.user("Alice", false)
	bob, _ := a.user("Bob", false)

	ref := a.podcast(alice, func(p *models.Podcast) { p.Title = "ref" })
	a.podcast(alice, func(p *models.Podcast) { p.Title = "same author" })
	a.podcast(bob, func(p *models.Podcast) {
		p.Title = "stranger"
		p.Category = "music"
		p.Language = "fr"
	})

	w := a.do(http.MethodGet, "/api/podcasts/"+ref.ID+"/similar", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("similar = %d: %s", w.Code, w.Body.String())
	}
	got := decode[struct {
		Data []discovery.Scored `json:"data"`
	}](t, w).Data
	if len(got) != 2 || got[0].Title != "same author" {
		t.Errorf("similar = %+v, want same author first", got)
	}

	w = a.do(http.MethodGet, "/api/podcasts/"+ref.ID+"/similar?limit=1&category=music", "", nil)
	got = decode[struct {
		Data []discovery.Scored `json:"data"`
	}](t, w).Data
	if len(got) != 1 || got[0].Title != "stranger" {
		t.Errorf("similar with facet = %+v, want [stranger]", got)
	}

	if w := a.do(http.MethodGet, "/api/podcasts/nope/similar", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("similar for missing reference = %d, want 404", w.Code)
	}
}

func TestCreatePodcastMultipart(t *testing.T) {
	a := newApp(t)
	_, token := a.user("Alice", false)
	if _, err := a.svc.CreateCategory(context.Background(), "Technology", ""); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "Episode 1")
	mw.WriteField("category", "technology")
	mw.WriteField("language", "en")
	mw.WriteField("audio_duration", "61.5")
	fw, _ := mw.CreateFormFile("audio", "ep1.mp3")
	fw.Write([]byte("ID3 fake audio"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/podcasts", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", w.Code, w.Body.String())
	}
	created := decode[struct {
		Data models.Podcast `json:"data"`
	}](t, w).Data
	if created.AudioDuration != 61.5 || !strings.HasPrefix(created.AudioURL, "https://cdn.test/") {
		t.Errorf("created = %+v", created)
	}

	// thiếu tiêu đề
	w = a.do(http.MethodPost, "/api/podcasts", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("create without title = %d, want 400", w.Code)
	}

	if w := a.do(http.MethodPost, "/api/podcasts", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous create = %d, want 401", w.Code)
	}
}

func TestEngagementFlow(t *testing.T) {
	a := newApp(t)
	alice, aliceToken := a.user("Alice", false)
	_, bobToken := a.user("Bob", false)
	p := a.podcast(alice, nil)
	base := "/api/podcasts/" + p.ID

	w := a.do(http.MethodPost, base+"/like", bobToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("like = %d: %s", w.Code, w.Body.String())
	}
	like := decode[struct {
		Liked     bool  `json:"liked"`
		LikeCount int64 `json:"like_count"`
	}](t, w)
	if !like.Liked || like.LikeCount != 1 {
		t.Errorf("like = %+v", like)
	}

	if w := a.do(http.MethodPost, base+"/ratings", bobToken, gin.H{"score": 9}); w.Code != http.StatusBadRequest {
		t.Errorf("rating 9 = %d, want 400", w.Code)
	}
	w = a.do(http.MethodPost, base+"/ratings", bobToken, gin.H{"score": 4, "comment": "nice"})
	if w.Code != http.StatusOK {
		t.Fatalf("rate = %d: %s", w.Code, w.Body.String())
	}
	rating := decode[struct {
		AverageRating float64 `json:"average_rating"`
		RatingCount   int64   `json:"rating_count"`
	}](t, w)
	if rating.AverageRating != 4 || rating.RatingCount != 1 {
		t.Errorf("rating aggregate = %+v", rating)
	}

	w = a.do(http.MethodPost, base+"/comments", bobToken, gin.H{"content": "great episode"})
	if w.Code != http.StatusCreated {
		t.Fatalf("comment = %d: %s", w.Code, w.Body.String())
	}
	comment := decode[struct {
		Data models.Comment `json:"data"`
	}](t, w).Data

	if w := a.do(http.MethodDelete, "/api/comments/"+comment.ID, aliceToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("podcast owner deletes someone else's comment = %d, want 403", w.Code)
	}
	if w := a.do(http.MethodDelete, "/api/comments/"+comment.ID, bobToken, nil); w.Code != http.StatusOK {
		t.Errorf("author deletes own comment = %d", w.Code)
	}

	w = a.do(http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
	unread := decode[struct {
		Unread int64 `json:"unread"`
	}](t, w)
	if unread.Unread != 3 {
		t.Errorf("unread = %d, want 3 (like, rating, comment)", unread.Unread)
	}

	if w := a.do(http.MethodPut, "/api/notifications/read-all", aliceToken, nil); w.Code != http.StatusOK {
		t.Errorf("read-all = %d", w.Code)
	}
	w = a.do(http.MethodGet, "/api/notifications/unread-count", aliceToken, nil)
	if decode[struct {
		Unread int64 `json:"unread"`
	}](t, w).Unread != 0 {
		t.Errorf("unread after read-all = %s", w.Body.String())
	}

	if w := a.do(http.MethodPost, base+"/history", bobToken, gin.H{"position": 42}); w.Code != http.StatusOK {
		t.Errorf("history = %d: %s", w.Code, w.Body.String())
	}
	w = a.do(http.MethodGet, "/api/me/history", bobToken, nil)
	history := decode[struct {
		Data []models.ListeningHistory `json:"data"`
	}](t, w).Data
	if len(history) != 1 || history[0].Position != 42 {
		t.Errorf("history = %+v", history)
	}
}

func TestFollow(t *testing.T) {
	a := newApp(t)
	alice, _ := a.user("Alice", false)
	bob, bobToken := a.user("Bob", false)

	path := "/api/users/" + alice.ID + "/follow"
	if w := a.do(http.MethodPost, path, bobToken, nil); w.Code != http.StatusCreated {
		t.Fatalf("follow = %d: %s", w.Code, w.Body.String())
	}
	if w := a.do(http.MethodPost, path, bobToken, nil); w.Code != http.StatusConflict {
		t.Errorf("follow twice = %d, want 409", w.Code)
	}
	if w := a.do(http.MethodPost, "/api/users/"+bob.ID+"/follow", bobToken, nil); w.Code != http.StatusBadRequest {
		t.Errorf("self follow = %d, want 400", w.Code)
	}

	w := a.do(http.MethodGet, "/api/users/"+alice.ID+"/followers", "", nil)
	if got := decode[struct {
		Total int `json:"total"`
	}](t, w).Total; got != 1 {
		t.Errorf("followers = %d, want 1", got)
	}

	if w := a.do(http.MethodDelete, path, bobToken, nil); w.Code != http.StatusOK {
		t.Errorf("unfollow = %d", w.Code)
	}
}

func TestAuthRoutes(t *testing.T) {
	a := newApp(t)

	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "eve@example.com", "password": "hunter22", "name": "Eve"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", w.Code, w.Body.String())
	}
	if w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "eve@example.com", "password": "hunter22", "name": "Eve"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate register = %d, want 409", w.Code)
	}

	if w := a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "eve@example.com", "password": "wrong"}); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login = %d, want 401", w.Code)
	}
	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "eve@example.com", "password": "hunter22"})
	if w.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", w.Code, w.Body.String())
	}
	token := decode[struct {
		Token string `json:"token"`
	}](t, w).Token

	w = a.do(http.MethodPut, "/api/me", token, gin.H{"name": "Eve Online"})
	if w.Code != http.StatusOK {
		t.Fatalf("update me = %d: %s", w.Code, w.Body.String())
	}
	w = a.do(http.MethodGet, "/api/me", token, nil)
	if !strings.Contains(w.Body.String(), `"email":"eve@example.com"`) {
		t.Errorf("GET /api/me does not return the owner's email: %s", w.Body.String())
	}
	me := decode[struct {
		Data models.User `json:"data"`
	}](t, w).Data
	if me.Name != "Eve Online" {
		t.Errorf("me = %+v", me)
	}

	if w := a.do(http.MethodPost, "/api/auth/clerk", "", gin.H{"clerk_token": "x"}); w.Code != http.StatusServiceUnavailable {
		t.Errorf("clerk login without provider = %d, want 503", w.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	a := newApp(t)
	_, adminToken := a.user("Root", true)
	bob, bobToken := a.user("Bob", false)

	if w := a.do(http.MethodGet, "/api/admin/stats", bobToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("stats as user = %d, want 403", w.Code)
	}
	w := a.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats = %d", w.Code)
	}
	if got := decode[struct {
		Data services.Stats `json:"data"`
	}](t, w).Data; got.Users != 2 {
		t.Errorf("stats.users = %d, want 2", got.Users)
	}

	w = a.do(http.MethodPost, "/api/categories", adminToken, gin.H{"name": "Khoa học"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category = %d: %s", w.Code, w.Body.String())
	}
	cat := decode[struct {
		Data models.Category `json:"data"`
	}](t, w).Data

	if w := a.do(http.MethodPatch, "/api/categories/"+cat.ID+"/status", adminToken, gin.H{"active": false}); w.Code != http.StatusOK {
		t.Errorf("disable category = %d: %s", w.Code, w.Body.String())
	}

	count := func(token, query string) int {
		w := a.do(http.MethodGet, "/api/categories"+query, token, nil)
		return len(decode[struct {
			Data []models.Category `json:"data"`
		}](t, w).Data)
	}
	if n := count("", ""); n != 0 {
		t.Errorf("public categories = %d, want 0", n)
	}
	if n := count(bobToken, "?all=true"); n != 0 {
		t.Errorf("user with all=true sees %d categories, want 0", n)
	}
	if n := count(adminToken, "?all=true"); n != 1 {
		t.Errorf("admin with all=true sees %d categories, want 1", n)
	}

	if w := a.do(http.MethodPatch, "/api/admin/users/"+bob.ID+"/role", adminToken, gin.H{"role": "owner"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown role = %d, want 400", w.Code)
	}
	if w := a.do(http.MethodPatch, "/api/admin/users/"+bob.ID+"/role", adminToken, gin.H{"role": models.RoleAdmin}); w.Code != http.StatusOK {
		t.Errorf("promote = %d", w.Code)
	}
}

func TestPublicPayloadsHideEmail(t *testing.T) {
	a := newApp(t)
	alice, _ := a.user("Alice", false)
	bob, bobToken := a.user("Bob", false)
	p := a.podcast(alice, nil)

	if w := a.do(http.MethodPost, "/api/podcasts/"+p.ID+"/ratings", bobToken, gin.H{"score": 5}); w.Code != http.StatusOK {
		t.Fatalf("rate = %d: %s", w.Code, w.Body.String())
	}
	if w := a.do(http.MethodPost, "/api/users/"+alice.ID+"/follow", bobToken, nil); w.Code != http.StatusCreated {
		t.Fatalf("follow = %d: %s", w.Code, w.Body.String())
	}

	for _, path := range []string{
		"/api/podcasts/" + p.ID + "/ratings",
		"/api/users/" + alice.ID,
		"/api/users/" + alice.ID + "/followers",
		"/api/users/" + bob.ID + "/following",
		"/api/users/top",
	} {
		w := a.do(http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, w.Code)
			continue
		}
		if body := w.Body.String(); strings.Contains(body, "@example.com") || strings.Contains(body, `"email"`) {
			t.Errorf("GET %s leaks an email address: %s", path, body)
		}
	}
}
