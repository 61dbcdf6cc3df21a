package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// TileUpdate reports a finished band via SSE
type TileUpdate struct {
	TileNumber int `json:"tileNumber"` // Bands finished so far (1-based)
	TotalTiles int `json:"totalTiles"`
	Y0         int `json:"y0"` // First row of the band
	Y1         int `json:"y1"` // One past the last row
}

// Stats represents render statistics
type Stats struct {
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Samples       int     `json:"samplesPerPixel"`
	PrimaryRays   int64   `json:"primaryRays"`
	ShadowRays    int64   `json:"shadowRays"`
	ReflectedRays int64   `json:"reflectedRays"`
	RefractedRays int64   `json:"refractedRays"`
	RaysPerSecond float64 `json:"raysPerSecond"`
	ElapsedMs     int64   `json:"elapsedMs"`
}

// CompleteUpdate carries the finished image via SSE
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "tile", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

func newStats(s renderer.RenderStats) Stats {
	return Stats{
		Width:         s.Width,
		Height:        s.Height,
		Samples:       s.SamplesPerPixel,
		PrimaryRays:   s.PrimaryRays,
		ShadowRays:    s.ShadowRays,
		ReflectedRays: s.ReflectedRays,
		RefractedRays: s.RefractedRays,
		RaysPerSecond: s.RaysPerSecond(),
		ElapsedMs:     s.Elapsed.Milliseconds(),
	}
}

// handleRender renders a scene and responds with the encoded image.
// format=avs selects the AVS encoding instead of PNG.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "png" && format != "avs" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: unknown format %q", format))
		return
	}

	raytracer, err := s.newRaytracer(req, nil)
	if err != nil {
		writeError(w, sceneErrorStatus(err), err.Error())
		return
	}

	img, stats, err := raytracer.Render(r.Context(), nil)
	if err != nil {
		if r.Context().Err() != nil {
			log.Printf("Render of %s cancelled: %v", req.Scene, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("Rendered %s at %dx%d in %v", req.Scene, stats.Width, stats.Height, stats.Elapsed)

	var buf bytes.Buffer
	contentType := "image/png"
	if format == "avs" {
		contentType = "application/octet-stream"
		err = loaders.WriteAVS(&buf, img)
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode image: %v", err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Elapsed.Milliseconds(), 10))
	w.Header().Set("X-Total-Rays", strconv.FormatInt(stats.TotalRays(), 10))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// sceneErrorStatus maps scene resolution failures to HTTP statuses
func sceneErrorStatus(err error) int {
	if errors.Is(err, scene.ErrUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// handleRenderStream renders with band progress and console output streamed via SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Create unified SSE event channel for thread-safe writing
	sseEventChan := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		s.writeSSEEvents(w, ctx, sseEventChan)
		close(writerDone)
	}()
	defer func() {
		close(sseEventChan)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	consoleDone := make(chan struct{})
	go func() {
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
		close(consoleDone)
	}()

	raytracer, err := s.newRaytracer(req, webLogger)
	if err != nil {
		close(consoleChan)
		<-consoleDone
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	img, stats, err := raytracer.Render(ctx, func(p renderer.TileProgress) {
		s.sendEvent(ctx, sseEventChan, "tile", TileUpdate{
			TileNumber: p.Completed,
			TotalTiles: p.Total,
			Y0:         p.Tile.Bounds.Min.Y,
			Y1:         p.Tile.Bounds.Max.Y,
		})
	})
	// Drain console output before the final event
	close(consoleChan)
	<-consoleDone
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	imageData, err := s.imageToBase64PNG(img)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("failed to encode image: %v", err))
		return
	}
	s.sendEvent(ctx, sseEventChan, "complete", CompleteUpdate{ImageData: imageData, Stats: newStats(stats)})
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// writeSSEEvents writes all SSE events from a single goroutine until the channel closes
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan <-chan SSEEvent) {
	clientGone := false
	for event := range sseEventChan {
		// Keep draining after a disconnect so senders never block
		if clientGone || ctx.Err() != nil {
			clientGone = true
			continue
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			clientGone = true
			continue
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}
}

// streamConsoleMessages forwards console messages until consoleChan closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sseEventChan chan<- SSEEvent) {
	for consoleMsg := range consoleChan {
		s.sendEvent(ctx, sseEventChan, "console", consoleMsg)
	}
}

// sendEvent JSON-encodes v and queues it, giving up if the client has gone
func (s *Server) sendEvent(ctx context.Context, sseEventChan chan<- SSEEvent, eventType string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}
	select {
	case sseEventChan <- SSEEvent{Type: eventType, Data: string(data)}:
	case <-ctx.Done():
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func (s *Server) imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleError sends an error event to the SSE channel
func (s *Server) handleError(ctx context.Context, sseEventChan chan<- SSEEvent, message string) {
	select {
	case sseEventChan <- SSEEvent{Type: "error", Data: message}:
	case <-ctx.Done():
		// Client disconnected, don't block
	}
}
