package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/contactform/internal/contact"
	"github.com/vango-dev/contactform/internal/errors"
	"github.com/vango-dev/contactform/pkg/middleware"
	"github.com/vango-dev/contactform/pkg/render"
	"github.com/vango-dev/contactform/pkg/session"
	"github.com/vango-dev/contactform/pkg/vdom"
)

// LiveEvent is a DOM event forwarded by the thin client.
type LiveEvent struct {
	HID   string `json:"hid"`
	Event string `json:"event"`
	Value string `json:"value"`
}

// LiveMessage is a server reply on the live channel.
type LiveMessage struct {
	// Type is "render" or "error".
	Type string `json:"type"`

	// HTML is the new content of the mount point.
	HTML string `json:"html,omitempty"`

	// Code is the error code of an error message.
	Code string `json:"code,omitempty"`

	// Error describes an error message.
	Error string `json:"error,omitempty"`
}

// liveConn is one live WebSocket connection and the form it owns. Only
// the connection's read loop touches the form.
type liveConn struct {
	conn      *websocket.Conn
	sessionID string
	createdAt time.Time
	form      *contact.Form
	renderer  *render.Renderer
	handlers  map[string]any
	writeWait time.Duration
	closeOnce sync.Once
}

// render renders the form and keeps the handlers of this render for
// dispatch.
func (c *liveConn) render() (string, error) {
	c.renderer.Reset()
	html, err := c.renderer.RenderToString(c.form.Render())
	if err != nil {
		return "", err
	}
	c.handlers = c.renderer.GetHandlers()
	return html, nil
}

// dispatch runs the handler registered for the event at the last render.
func (c *liveConn) dispatch(ev LiveEvent) error {
	if ev.HID == "" || ev.Event == "" {
		return fmt.Errorf("%w: hid %q event %q", ErrInvalidEvent, ev.HID, ev.Event)
	}
	h, ok := c.handlers[render.HandlerKey(ev.HID, ev.Event)]
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrHandlerNotFound, ev.Event, ev.HID)
	}
	return vdom.Invoke(h, ev.Value)
}

func (c *liveConn) write(msg LiveMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *liveConn) writeError(err error) error {
	code := "CF010"
	if stderrors.Is(err, ErrHandlerNotFound) {
		code = "CF001"
	}
	e := errors.FromError(err, code)
	return c.write(LiveMessage{Type: "error", Code: e.Code, Error: e.FormatCompact()})
}

// close sends a close frame and closes the connection. Safe to call from
// any goroutine, more than once.
func (c *liveConn) close(code int, reason string) {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(c.writeWait)
		_ = c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.conn.Close()
	})
}

// handleLive upgrades to a WebSocket and runs the event loop until the
// client goes away or the server shuts down.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closing := s.closing
	s.mu.Unlock()
	if closing {
		http.Error(w, ErrServerClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	id := uuid.NewString()
	if cookie, err := r.Cookie(s.config.CookieName); err == nil && cookie.Value != "" {
		id = cookie.Value
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered with an HTTP error.
		s.logger.Warn("websocket upgrade failed", "error", errors.New("CF011").Wrap(err))
		s.metrics.RecordWebSocketError("upgrade")
		return
	}

	c := &liveConn{
		conn:      conn,
		sessionID: id,
		createdAt: time.Now(),
		form:      s.newForm(id),
		renderer:  render.NewRenderer(render.RendererConfig{}),
		writeWait: s.config.WriteWait,
	}
	if !s.register(c) {
		c.close(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer s.unregister(c)

	s.metrics.RecordLiveConnect()
	defer s.metrics.RecordLiveDisconnect()

	ctx := r.Context()
	log := s.logger.With("session_id", id)
	if s.resume(ctx, id, c.form) {
		s.metrics.RecordReconnect()
		log.Debug("live session resumed")
	}

	defer s.detach(ctx, c)
	s.loop(ctx, c, log)
}

// loop reads events until the connection fails.
func (s *Server) loop(ctx context.Context, c *liveConn, log *slog.Logger) {
	pongWait := 2 * s.config.PingInterval
	c.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = s.store.Touch(ctx, c.sessionID, s.expiry())
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(c, done)

	if err := s.sendRender(c); err != nil {
		log.Warn("initial render failed", "error", err)
		return
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				log.Debug("live connection lost", "error", err)
				s.metrics.RecordWebSocketError("read")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := s.handleEvent(ctx, c, data); err != nil {
			log.Warn("live write failed", "error", err)
			s.metrics.RecordWebSocketError("write")
			return
		}
	}
}

// handleEvent decodes and dispatches one event and writes the reply. It
// returns an error only when the reply could not be written.
func (s *Server) handleEvent(ctx context.Context, c *liveConn, data []byte) error {
	var ev LiveEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return c.writeError(fmt.Errorf("%w: %v", ErrInvalidEvent, err))
	}

	_, span := s.tracer.StartEvent(ctx, ev.Event, ev.HID)
	err := c.dispatch(ev)
	middleware.EndSpan(span, err)
	if err != nil {
		return c.writeError(err)
	}

	s.metrics.RecordEvent(ev.Event)
	return s.sendRender(c)
}

func (s *Server) sendRender(c *liveConn) error {
	html, err := c.render()
	if err != nil {
		s.logger.Error("render failed", "session_id", c.sessionID, "error", err)
		return c.write(LiveMessage{Type: "error", Error: "render failed"})
	}
	return c.write(LiveMessage{Type: "render", HTML: html})
}

// pingLoop pings the client until done is closed or a ping fails.
func (s *Server) pingLoop(c *liveConn, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(c.writeWait)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) register(c *liveConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) unregister(c *liveConn) {
	c.close(websocket.CloseNormalClosure, "")
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

// detach saves the form of a closing connection. During shutdown the
// state is collected and saved in one batch.
func (s *Server) detach(ctx context.Context, c *liveConn) {
	s.mu.Lock()
	if s.closing {
		data, err := session.Encode(c.sessionID, c.createdAt, c.form.State())
		if err == nil {
			s.detached[c.sessionID] = session.SessionData{Data: data, ExpiresAt: s.expiry()}
		}
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	s.saveState(ctx, c.sessionID, c.createdAt, c.form)
}
