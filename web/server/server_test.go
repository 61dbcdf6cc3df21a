package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

const targetSceneJSON = `{
  "version": "1.0",
  "name": "Target",
  "group": "Tests",
  "lights": [{"intensity": 1, "location": [0, 0, -10]}],
  "objects": [
    {"type": "sphere", "radius": 6, "transform": {"translation": [0, 0, 10]},
     "material": {"diffuse": [1, 0, 0], "kd": 0.5, "reflectiveness": 0.25, "diffusiveness": 0.75}}
  ]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "target.json"), []byte(targetSceneJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewServer(Config{Port: 0, ScenesDir: dir})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("body = %v (%v)", body, err)
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var response scene.ScenesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(response.Groups))
	}
	if response.Groups[1].Name != "Tests" || response.Groups[1].Scenes[0].ID != "file:target" {
		t.Errorf("file group = %+v", response.Groups[1])
	}
}

func TestHandleRender(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		query string
	}{
		{"built-in scene", "scene=default&width=16&height=12"},
		{"file scene with supersampling", "scene=file:target&width=12&height=8&samples=quincunx&depth=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/render?"+tt.query)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
				t.Errorf("Content-Type = %q", ct)
			}
			if rec.Header().Get("X-Total-Rays") == "" {
				t.Error("missing X-Total-Rays header")
			}
			if _, err := png.Decode(rec.Body); err != nil {
				t.Errorf("response is not a PNG: %v", err)
			}
		})
	}

	t.Run("avs", func(t *testing.T) {
		rec := get(t, s, "/api/render?scene=file:target&width=6&height=4&format=avs")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		img, err := loaders.ReadAVS(bytes.NewReader(rec.Body.Bytes()))
		if err != nil {
			t.Fatalf("ReadAVS() error: %v", err)
		}
		if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
			t.Errorf("bounds = %v", img.Bounds())
		}
	})
}

func TestHandleRender_InvalidRequests(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"zero width", "width=0", http.StatusBadRequest},
		{"huge height", "height=5000", http.StatusBadRequest},
		{"non-numeric depth", "depth=deep", http.StatusBadRequest},
		{"depth too large", "depth=11", http.StatusBadRequest},
		{"unknown pattern", "samples=stratified&width=4&height=4", http.StatusBadRequest},
		{"unknown format", "format=jpeg", http.StatusBadRequest},
		{"unknown scene", "scene=cornell-box", http.StatusNotFound},
		{"path traversal", "scene=file:../secrets", http.StatusBadRequest},
		{"missing file scene", "scene=file:absent", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, "/api/render?"+tt.query)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t)

	t.Run("hit", func(t *testing.T) {
		rec := get(t, s, "/api/inspect?scene=file:target&width=12&height=8&x=6&y=4")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		var response InspectResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatal(err)
		}
		if !response.Hit || response.Kind != "sphere" || response.MaterialType != "mirror" {
			t.Errorf("response = %+v", response)
		}
		if response.Distance <= 0 || response.Material["diffuse"] != "#ff0000" {
			t.Errorf("unexpected hit details %+v", response)
		}
	})

	t.Run("miss", func(t *testing.T) {
		rec := get(t, s, "/api/inspect?scene=file:target&width=12&height=8&x=0&y=0")
		var response InspectResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatal(err)
		}
		if response.Hit || response.Kind != "" {
			t.Errorf("response = %+v, want a miss", response)
		}
	})

	for name, query := range map[string]string{
		"out of range": "width=12&height=8&x=12&y=0",
		"missing x":    "width=12&height=8&y=0",
		"bad y":        "width=12&height=8&x=1&y=top",
	} {
		t.Run(name, func(t *testing.T) {
			if rec := get(t, s, "/api/inspect?"+query); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleRenderStream(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render/stream?scene=file:target&width=8&height=40")
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, event := range []string{"event: console", "event: tile", "event: complete"} {
		if !strings.Contains(body, event) {
			t.Errorf("stream is missing %q", event)
		}
	}
	if strings.Contains(body, "event: error") {
		t.Errorf("unexpected error event in %s", body)
	}
	if !strings.HasSuffix(strings.TrimSpace(body), "}") || strings.LastIndex(body, "event: complete") < strings.LastIndex(body, "event: tile") {
		t.Error("complete should be the last event")
	}
}

func TestHandleRenderStream_InvalidRequest(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/render/stream?width=-1")
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("expected an error event, got %q", rec.Body.String())
	}
}
