// Package session drives one interactive graph view over a websocket. A reader
// goroutine decodes client messages into a queue; the frame loop owns the
// view, applies queued events at frame boundaries and pushes PNG frames.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/layout"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/render"
	"github.com/psidex/chargraph/internal/stats"
	"github.com/psidex/chargraph/internal/view"
)

var validate = validator.New()

// Observer is told about session activity, e.g. to keep metrics.
type Observer interface {
	FrameSent()
	PayloadRejected()
}

type nopObserver struct{}

func (nopObserver) FrameSent()       {}
func (nopObserver) PayloadRejected() {}

// Options carry the host-wide settings every session starts from. Zero
// sections fall back to their defaults.
type Options struct {
	Layout   layout.Config
	View     view.Options
	Style    render.Style
	Theme    render.ThemeNames
	Defaults Config
	Clock    view.Clock
	Observer Observer
	Logger   *slog.Logger
}

type Session struct {
	id       string
	ws       lib.ThreadSafeWebSocket
	cfg      Config
	view     *view.View
	events   *lib.Queue[event]
	limiter  *rate.Limiter
	clock    view.Clock
	observer Observer
	logger   *slog.Logger

	pending bool
	tooltip string
	// shown is the fingerprint of the loaded graph, valid once loaded is set.
	shown  uint64
	loaded bool
}

// Accept reads the client config, which must be the first message, and builds
// the session's view. A config that fails validation is reported to the
// client before the error is returned.
func Accept(id string, ws lib.ThreadSafeWebSocket, o Options) (*Session, error) {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Clock == nil {
		o.Clock = view.RealClock{}
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if o.View.MaxZoom == 0 {
		o.View = view.DefaultOptions()
	}
	if o.Style == (render.Style{}) {
		o.Style = render.DefaultStyle()
	}
	if o.Defaults == (Config{}) {
		o.Defaults = DefaultConfig()
	}
	logger := o.Logger.With("session", id)

	_, msg, err := ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read session config: %w", err)
	}

	cfg := o.Defaults
	if err := json.Unmarshal(msg, &cfg); err != nil {
		_ = ws.WriteJSON(errorMessage{Type: "error", Message: "invalid config", Reason: err.Error()})
		return nil, fmt.Errorf("unmarshal session config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		_ = ws.WriteJSON(errorMessage{Type: "error", Message: "invalid config", Reason: err.Error()})
		return nil, fmt.Errorf("validate session config: %w", err)
	}

	names := o.Theme
	if cfg.Theme != (render.ThemeNames{}) {
		names = cfg.Theme
	}
	theme, errs := render.ResolveTheme(names)
	for _, err := range errs {
		logger.Warn("ignoring theme colour", "err", err)
	}

	vo := o.View
	vo.Width, vo.Height = cfg.Width, cfg.Height
	s := &Session{
		id:       id,
		ws:       ws,
		cfg:      cfg,
		view:     view.New(vo, o.Layout, render.NewRenderer(theme, o.Style, logger), logger),
		events:   lib.NewQueue[event](),
		limiter:  rate.NewLimiter(rate.Limit(cfg.FrameRate), 1),
		clock:    o.Clock,
		observer: o.Observer,
		logger:   logger,
	}
	if err := ws.WriteJSON(readyMessage{Type: "ready", ID: id}); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

// Run blocks until ctx is done or the client goes away. The caller closes the
// websocket afterwards, which also ends the reader.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.read()
		cancel()
	}()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / s.cfg.FPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			select {
			case err := <-readErr:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return nil
				}
				return err
			default:
				return nil
			}
		case <-ticker.C:
			if err := s.frame(s.clock.Now()); err != nil {
				return err
			}
		}
	}
}

// read decodes client messages until the connection fails.
func (s *Session) read() error {
	for {
		_, msg, err := s.ws.ReadMessage()
		if err != nil {
			return err
		}

		var in inbound
		if err := json.Unmarshal(msg, &in); err != nil {
			s.sendError(errorMessage{Message: "invalid message", Reason: err.Error()})
			continue
		}

		switch in.Type {
		case TypeGraph:
			g, err := graph.Parse(in.Data)
			if err != nil {
				s.reject(err)
				continue
			}
			s.events.Enqueue(event{kind: TypeGraph, graph: g, fingerprint: g.Fingerprint()})
		case TypePointer:
			s.events.Enqueue(event{kind: TypePointer, x: in.X, y: in.Y})
		case TypeLeave, TypeReset:
			s.events.Enqueue(event{kind: in.Type})
		case TypeResize:
			// Resize is safe to call off the frame loop.
			if err := s.view.Resize(in.Width, in.Height); err != nil {
				s.sendError(errorMessage{Message: "invalid resize", Reason: err.Error()})
			}
		default:
			s.sendError(errorMessage{Message: "unknown message type", Reason: in.Type})
		}
	}
}

// frame applies queued events, advances the view and pushes what changed.
func (s *Session) frame(now time.Time) error {
	for _, ev := range s.events.Drain() {
		switch ev.kind {
		case TypeGraph:
			unchanged := s.loaded && ev.fingerprint == s.shown
			if unchanged {
				s.logger.Debug("graph unchanged, keeping layout", "fingerprint", ev.fingerprint)
			} else {
				if err := s.view.Load(ev.graph, now); err != nil {
					s.reject(err)
					continue
				}
				s.shown, s.loaded = ev.fingerprint, true
			}
			msg := statsMessage{
				Type:        "stats",
				Rows:        stats.Ranked(s.view.Stats().Rows),
				Fingerprint: fmt.Sprintf("%016x", ev.fingerprint),
				Unchanged:   unchanged,
			}
			if err := s.ws.WriteJSON(msg); err != nil {
				return err
			}
		case TypePointer:
			s.view.PointerMove(ev.x, ev.y)
		case TypeLeave:
			s.view.PointerLeave()
		case TypeReset:
			s.view.ResetView(now)
		}
	}

	s.view.Advance(now)

	if s.view.TakeFrame() {
		s.pending = true
	}
	if s.pending && s.limiter.AllowN(now, 1) {
		var buf bytes.Buffer
		if err := s.view.EncodePNG(&buf); err != nil {
			return fmt.Errorf("encode frame: %w", err)
		}
		if err := s.ws.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
			return err
		}
		s.pending = false
		s.observer.FrameSent()
	}

	if tip := s.view.Tooltip(); tip != s.tooltip {
		s.tooltip = tip
		if err := s.ws.WriteJSON(tooltipMessage{Type: "tooltip", Text: tip}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) reject(err error) {
	s.observer.PayloadRejected()
	s.logger.Info("rejected graph payload", "err", err)

	msg := errorMessage{Message: graph.ErrInvalidData.Error()}
	var verr *graph.ValidationError
	if errors.As(err, &verr) {
		msg.Field, msg.Reason = verr.Field, verr.Reason
	}
	s.sendError(msg)
}

func (s *Session) sendError(msg errorMessage) {
	msg.Type = "error"
	if err := s.ws.WriteJSON(msg); err != nil {
		s.logger.Debug("write error message", "err", err)
	}
}
