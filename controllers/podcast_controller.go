package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/uttkarsh123-shiv/SoundNest-sub000/config"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/discovery"
	"github.com/uttkarsh123-shiv/SoundNest-sub000/services"
)

// listParam accepts both ?category=a&category=b and ?category=a,b.
func listParam(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func limitParam(c *gin.Context, cfg config.DiscoveryConfig, def int) (int, bool) {
	limit, ok := queryInt(c, "limit", def)
	if !ok {
		return 0, false
	}
	if limit == 0 {
		limit = def
	}
	return min(limit, cfg.MaxLimit), true
}

// Danh sách podcast: tìm kiếm, lọc và sắp xếp
func ListPodcasts(svc *services.Service, cfg config.DiscoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sort, err := discovery.ParseSort(c.DefaultQuery("sort", string(discovery.SortLatest)))
		if err != nil {
			respondError(c, err)
			return
		}
		limit, ok := limitParam(c, cfg, cfg.DefaultLimit)
		if !ok {
			return
		}

		items, err := svc.Discover(c.Request.Context(), discovery.Query{
			Search:     c.Query("search"),
			AuthorID:   c.Query("author"),
			Categories: listParam(c, "category"),
			Languages:  listParam(c, "language"),
			Sort:       sort,
			Limit:      limit,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
	}
}

func TrendingPodcasts(svc *services.Service, cfg config.DiscoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := limitParam(c, cfg, cfg.DefaultLimit)
		if !ok {
			return
		}
		items, err := svc.Discover(c.Request.Context(), discovery.Query{Sort: discovery.SortTrending, Limit: limit})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

// Podcast nổi bật
func FeaturedPodcasts(svc *services.Service, cfg config.DiscoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Discover(c.Request.Context(), discovery.Query{Sort: discovery.SortTopRated, Limit: cfg.FeaturedSize})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

// Chi tiết podcast, mỗi lần xem tăng views
func GetPodcast(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetPodcast(c.Request.Context(), c.Param("id"), true)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": p})
	}
}

func SimilarPodcasts(svc *services.Service, cfg config.DiscoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := limitParam(c, cfg, cfg.SimilarLimit)
		if !ok {
			return
		}
		q := discovery.Query{
			Categories: listParam(c, "category"),
			Languages:  listParam(c, "language"),
		}
		items, err := svc.Similar(c.Request.Context(), c.Param("id"), q, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

// UserPodcasts lists the podcasts of one author, newest first.
func UserPodcasts(svc *services.Service, cfg config.DiscoveryConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := limitParam(c, cfg, cfg.DefaultLimit)
		if !ok {
			return
		}
		items, err := svc.Discover(c.Request.Context(), discovery.Query{
			AuthorID: c.Param("id"),
			Sort:     discovery.SortLatest,
			Limit:    limit,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": items})
	}
}

// Tạo podcast (multipart/form-data)
func CreatePodcast(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}

		in := services.CreatePodcastInput{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Category:    c.PostForm("category"),
			Language:    c.PostForm("language"),
			VoiceType:   c.PostForm("voice_type"),
			VoicePrompt: c.PostForm("voice_prompt"),
			ImagePrompt: c.PostForm("image_prompt"),
		}
		if raw := c.PostForm("audio_duration"); raw != "" {
			d, err := strconv.ParseFloat(raw, 64)
			if err != nil || d < 0 {
				badRequest(c, "audio_duration must be a non-negative number")
				return
			}
			in.AudioDuration = d
		}

		audio, closeAudio, err := formFile(c, "audio")
		if err != nil {
			badRequest(c, "cannot read audio file")
			return
		}
		defer closeAudio()
		in.Audio = audio

		image, closeImage, err := formFile(c, "image")
		if err != nil {
			badRequest(c, "cannot read image file")
			return
		}
		defer closeImage()
		in.Image = image

		p, err := svc.CreatePodcast(c.Request.Context(), user, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "podcast created", "data": p})
	}
}

// formFile returns nil when the field is absent.
func formFile(c *gin.Context, field string) (*services.FileInput, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.FileInput{
		Name:        fh.Filename,
		ContentType: contentType(fh),
		Body:        f,
	}, func() { f.Close() }, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func DeletePodcast(svc *services.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustUser(c)
		if !ok {
			return
		}
		if err := svc.DeletePodcast(c.Request.Context(), user, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "podcast deleted"})
	}
}
