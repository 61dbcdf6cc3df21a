package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quic-go/quic-go/http3"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Limits on request parameters
const (
	MaxImageSize = 2000
	MaxDepth     = 10
)

// Config configures the listeners and scene directory of the server
type Config struct {
	Port      int    // TCP port for HTTP/1.1 and HTTP/2
	HTTP3Port int    // UDP port for HTTP/3; 0 disables it
	CertFile  string // TLS certificate, required for HTTP/3
	KeyFile   string
	ScenesDir string // Directory of JSON scene files served as "file:<name>"
}

// Server handles web requests for the raytracer
type Server struct {
	config Config
}

// NewServer creates a new web server
func NewServer(config Config) *Server {
	return &Server{config: config}
}

// RenderRequest holds the parsed parameters shared by render and inspect requests
type RenderRequest struct {
	Scene    string
	Width    int
	Height   int
	MaxDepth int
	Pattern  string
}

// Handler returns the API routes and the static file server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("static/")))
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

func (s *Server) http3Enabled() bool {
	return s.config.HTTP3Port > 0 && s.config.CertFile != "" && s.config.KeyFile != ""
}

// Start serves until ctx is cancelled or a listener fails. With a certificate
// configured the TCP listener uses TLS; with an HTTP/3 port as well, a QUIC
// listener runs alongside it and TCP responses advertise it via Alt-Svc.
func (s *Server) Start(ctx context.Context) error {
	handler := s.Handler()
	g, gctx := errgroup.WithContext(ctx)

	var h3 *http3.Server
	if s.http3Enabled() {
		h3 = &http3.Server{Addr: fmt.Sprintf(":%d", s.config.HTTP3Port), Handler: handler}
		mux := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := h3.SetQUICHeaders(w.Header()); err != nil {
				log.Printf("Failed to set Alt-Svc header: %v", err)
			}
			mux.ServeHTTP(w, r)
		})
		g.Go(func() error {
			log.Printf("Starting HTTP/3 server on udp :%d", s.config.HTTP3Port)
			if err := h3.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile); err != nil && gctx.Err() == nil {
				return fmt.Errorf("http3 server: %w", err)
			}
			return nil
		})
	}

	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.config.Port), Handler: handler}
	g.Go(func() error {
		var err error
		if s.config.CertFile != "" && s.config.KeyFile != "" {
			log.Printf("Starting web server on https://localhost:%d", s.config.Port)
			err = srv.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile)
		} else {
			log.Printf("Starting web server on http://localhost:%d", s.config.Port)
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if h3 != nil {
			h3.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in and file scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.config.ScenesDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{Scene: values.Get("scene"), Pattern: values.Get("samples")}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Pattern == "" {
		req.Pattern = "center"
	}

	defaults := renderer.DefaultSamplingConfig()
	var err error
	if req.Width, err = parseIntParam(values, "width", defaults.Width, 1, MaxImageSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", defaults.Height, 1, MaxImageSize); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", defaults.MaxDepth, 0, MaxDepth); err != nil {
		return nil, err
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// newRaytracer builds the scene and raytracer a request describes
func (s *Server) newRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := s.loadScene(req.Scene)
	if err != nil {
		return nil, err
	}
	pattern, err := renderer.ParsePattern(req.Pattern)
	if err != nil {
		return nil, err
	}
	config := renderer.SamplingConfig{
		Width:    req.Width,
		Height:   req.Height,
		MaxDepth: req.MaxDepth,
		Pattern:  pattern,
	}
	return renderer.NewRaytracer(sceneObj, config, logger), nil
}

// loadScene resolves a built-in scene name or a "file:<name>" id from the scenes directory
func (s *Server) loadScene(id string) (*scene.Scene, error) {
	name, isFile := strings.CutPrefix(id, "file:")
	if !isFile {
		return scene.Lookup(id)
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid scene file name %q", name)
	}
	return loaders.LoadScene(filepath.Join(s.config.ScenesDir, name+".json"))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
