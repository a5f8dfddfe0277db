package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSupabaseStore(t *testing.T) {
	var gotBody, gotAuth, gotType string
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
			gotAuth = r.Header.Get("Authorization")
			gotType = r.Header.Get("Content-Type")
			if r.URL.EscapedPath() != "/storage/v1/object/podcasts/audio/ep%201.mp3" {
				t.Errorf("upload path = %q", r.URL.EscapedPath())
			}
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL+"/", "service-key", "podcasts", 5*time.Second)

	asset, err := store.Put(context.Background(), "audio/ep 1.mp3", "audio/mpeg", strings.NewReader("ID3"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if gotBody != "ID3" || gotAuth != "Bearer service-key" || gotType != "audio/mpeg" {
		t.Errorf("request = body %q auth %q type %q", gotBody, gotAuth, gotType)
	}
	if asset.StorageID != "audio/ep 1.mp3" {
		t.Errorf("StorageID = %q", asset.StorageID)
	}
	if want := srv.URL + "/storage/v1/object/public/podcasts/audio/ep%201.mp3"; asset.URL != want {
		t.Errorf("URL = %q, want %q", asset.URL, want)
	}

	if err := store.Delete(context.Background(), asset.StorageID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != "/storage/v1/object/podcasts/audio/ep 1.mp3" {
		t.Errorf("deleted path = %q", deleted)
	}
}

func TestSupabaseStore_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewSupabaseStore(srv.URL, "k", "missing", time.Second)
	if _, err := store.Put(context.Background(), "a.mp3", "audio/mpeg", strings.NewReader("x")); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Put() error = %v, want ErrUnavailable", err)
	}
	if err := store.Delete(context.Background(), "a.mp3"); err == nil {
		t.Error("Delete() error = nil, want status error")
	}
}

func TestHTTPGenerator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gen-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/audio":
			if req["voice"] != "alloy" || req["prompt"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(Asset{URL: "https://cdn.test/a.mp3", StorageID: "a.mp3", Duration: 61})
		case "/thumbnail":
			json.NewEncoder(w).Encode(Asset{URL: "https://cdn.test/t.png", StorageID: "t.png"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	gen := NewHTTPGenerator(srv.URL, "gen-key", 5*time.Second)

	audio, err := gen.GenerateAudio(context.Background(), "alloy", "intro to go")
	if err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}
	if audio.Duration != 61 || audio.StorageID != "a.mp3" {
		t.Errorf("GenerateAudio() = %+v", audio)
	}

	thumb, err := gen.GenerateThumbnail(context.Background(), "a gopher")
	if err != nil || thumb.URL != "https://cdn.test/t.png" {
		t.Errorf("GenerateThumbnail() = %+v, %v", thumb, err)
	}

	bad := NewHTTPGenerator(srv.URL, "wrong", time.Second)
	if _, err := bad.GenerateAudio(context.Background(), "alloy", "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("GenerateAudio(bad key) error = %v, want ErrUnavailable", err)
	}
}
