// Package ws terminates client websocket connections and bridges them to
// the event router. Each connection gets a read pump feeding inbound frames
// to the router and a write pump draining the session outbox; either pump
// failing tears the session down exactly once through the router's
// disconnect path.
package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatwire/realtime-service/internal/domain/registry"
	"github.com/chatwire/realtime-service/internal/service"
)

// Options bound from configuration.
type Options struct {
	OutboxSize     int
	MaxMessageSize int64
	WriteTimeout   time.Duration
	PongTimeout    time.Duration
	CheckOrigin    func(r *http.Request) bool
}

type Handler struct {
	logger   *slog.Logger
	router   *service.Router
	upgrader websocket.Upgrader
	opts     Options
}

func NewHandler(logger *slog.Logger, router *service.Router, opts Options) *Handler {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 256
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 64 << 10
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = 60 * time.Second
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}

	return &Handler{
		logger: logger,
		router: router,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// ServeHTTP upgrades the request and runs the connection to completion. The
// session starts unauthenticated; everything beyond auth and ping is gated
// by the router's state machine.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sess := registry.NewSession(r.Context(), h.opts.OutboxSize)
	h.logger.Info("ws opened", "session_id", sess.ID(), "remote", r.RemoteAddr)

	go h.writePump(conn, sess)
	h.readPump(r, conn, sess)
}

// readPump owns the socket's read side. It exits on transport close or
// error, which is the single trigger for session teardown.
func (h *Handler) readPump(r *http.Request, conn *websocket.Conn, sess *registry.Session) {
	defer func() {
		h.router.Disconnect(r.Context(), sess)
		conn.Close()
	}()

	conn.SetReadLimit(h.opts.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(h.opts.PongTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.opts.PongTimeout))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				h.logger.Warn("ws read error", "session_id", sess.ID(), "error", err)
			}
			return
		}
		// Handler errors never tear down the transport; Route swallows them.
		h.router.Route(r.Context(), sess, raw)
	}
}

// writePump owns the socket's write side: outbox frames plus keepalive
// pings. Control-frame pings here are transport liveness, distinct from the
// protocol-level ping/pong events the router answers.
func (h *Handler) writePump(conn *websocket.Conn, sess *registry.Session) {
	pingInterval := h.opts.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		sess.Close()
		conn.Close()
	}()

	for {
		select {
		case <-sess.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-sess.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug("ws write failed", "session_id", sess.ID(), "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(h.opts.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
