package server

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ConsoleMessage is one line of render output forwarded to the browser console
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger implements core.Logger by copying render output to the server log
// and, without blocking, to a console channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) core.Logger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Printf implements core.Logger interface
func (wl *WebLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", wl.renderID, strings.TrimRight(message, "\n"))

	if wl.consoleChan == nil {
		return
	}
	select {
	case wl.consoleChan <- ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   message,
		Timestamp: time.Now(),
		Level:     messageLevel(message),
	}:
	default:
		// Channel full, drop the line
	}
}

// messageLevel derives the console level from a "Warning:" or "Error:" prefix
func messageLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.HasPrefix(lower, "error"):
		return "error"
	case strings.HasPrefix(lower, "warning"):
		return "warning"
	default:
		return "info"
	}
}
