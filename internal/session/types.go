package session

import (
	"encoding/json"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/stats"
)

// Config is the first message a client sends.
type Config struct {
	Width  int `json:"width" toml:"width" validate:"gt=0,lte=4096"`
	Height int `json:"height" toml:"height" validate:"gt=0,lte=4096"`
	// FPS is how often the frame loop advances the scene.
	FPS float64 `json:"fps" toml:"fps" validate:"gt=0,lte=120"`
	// FrameRate caps how many PNG frames per second are pushed.
	FrameRate float64           `json:"frameRate" toml:"frame_rate" validate:"gt=0"`
	Theme     render.ThemeNames `json:"theme" toml:"-"`
}

func DefaultConfig() Config {
	return Config{Width: 800, Height: 600, FPS: 60, FrameRate: 30}
}

// Message types a client may send after the config.
const (
	TypeGraph   = "graph"
	TypePointer = "pointer"
	TypeLeave   = "leave"
	TypeReset   = "reset"
	TypeResize  = "resize"
)

type inbound struct {
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
}

// event is an inbound message decoded by the reader and applied by the frame
// loop at the next frame boundary.
type event struct {
	kind        string
	graph       *graph.Graph
	fingerprint uint64
	x, y        float64
}

type readyMessage struct {
	Type string `json:"type"` // always "ready"
	ID   string `json:"id"`
}

type statsMessage struct {
	Type        string      `json:"type"` // always "stats"
	Rows        []stats.Row `json:"rows"`
	Fingerprint string      `json:"fingerprint"`
	// Unchanged is set when the payload matched the graph already shown, which
	// then keeps its layout and highlight.
	Unchanged bool `json:"unchanged,omitempty"`
}

type tooltipMessage struct {
	Type string `json:"type"` // always "tooltip"
	Text string `json:"text"`
}

type errorMessage struct {
	Type    string `json:"type"` // always "error"
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
