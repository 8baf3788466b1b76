package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jgirmay/geoattend/pkg/auth"
	"github.com/jgirmay/geoattend/pkg/config"
	apperrors "github.com/jgirmay/geoattend/pkg/errors"
	"github.com/jgirmay/geoattend/pkg/http/response"
	"github.com/jgirmay/geoattend/pkg/logging"
	"github.com/jgirmay/geoattend/pkg/services/presence"
)

// Authenticator resolves the handshake token to a principal
type Authenticator interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// Options tunes heartbeats and buffers
type Options struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	SendBuffer     int
	MaxMessageSize int64
	AllowedOrigins []string
}

// OptionsFromConfig converts the websocket config section
func OptionsFromConfig(cfg config.WebSocketConfig) Options {
	return Options{
		PingInterval:   cfg.PingInterval,
		PongWait:       cfg.PongWait,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		MaxMessageSize: cfg.MaxMessageSize,
		AllowedOrigins: cfg.AllowedOrigins,
	}
}

func (o Options) withDefaults() Options {
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 256
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 64 << 10
	}
	return o
}

// inbound is the envelope every client frame must use
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Handler upgrades authenticated requests and runs one read and one write pump per socket.
type Handler struct {
	broadcaster *presence.Broadcaster
	resolver    Authenticator
	logger      *logging.Logger
	opts        Options
	upgrader    gorillaws.Upgrader
	events      map[string]eventHandler
}

// NewHandler creates a new socket handler
func NewHandler(broadcaster *presence.Broadcaster, resolver Authenticator, logger *logging.Logger, opts Options) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	opts = opts.withDefaults()

	h := &Handler{
		broadcaster: broadcaster,
		resolver:    resolver,
		logger:      logger.Named("websocket"),
		opts:        opts,
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	h.events = h.eventTable()
	return h
}

// ServeHTTP authenticates, then upgrades. Nothing is upgraded without a principal.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	principal, err := h.resolver.Resolve(r.Context(), auth.ExtractToken(r))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnauthenticated):
			response.Error(w, apperrors.Unauthorized("missing or invalid authentication token"))
		case errors.Is(err, auth.ErrInactive):
			response.Error(w, apperrors.Forbidden("employee account is not active"))
		default:
			h.logger.Error("websocket principal resolution failed", zap.Error(err))
			response.Error(w, apperrors.Unavailable("unable to verify credentials, try again", 5))
		}
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := newClient(uuid.New().String(), NewConn(ws, h.opts.WriteWait), h.opts.SendBuffer)
	session := &presence.Session{
		ConnectionID: client.ID(),
		Employee:     principal.Employee,
		Observer:     principal.Observer,
		Conn:         client,
	}

	go h.writePump(client)
	h.broadcaster.Connect(session)
	go h.readPump(ws, client, session)

	h.logger.Debug("client connected",
		zap.String("connection_id", client.ID()),
		zap.String("employee_id", principal.Employee.ID),
		zap.Bool("observer", principal.Observer),
		zap.String("remote", client.conn.RemoteAddr()),
	)
}

// readPump reads frames until the socket fails or goes idle
func (h *Handler) readPump(ws *gorillaws.Conn, client *Client, session *presence.Session) {
	reason := "client closed"
	defer func() {
		h.broadcaster.Disconnect(client.ID(), reason)
		client.Close()
	}()

	ws.SetReadLimit(h.opts.MaxMessageSize)
	refresh := func() { _ = ws.SetReadDeadline(time.Now().Add(h.opts.PongWait)) }
	refresh()
	ws.SetPongHandler(func(string) error {
		refresh()
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			reason = disconnectReason(err, client)
			if gorillaws.IsUnexpectedCloseError(err, gorillaws.CloseGoingAway, gorillaws.CloseNormalClosure, gorillaws.CloseNoStatusReceived) {
				h.logger.Debug("websocket read error",
					zap.String("connection_id", client.ID()),
					zap.Error(err),
				)
			}
			return
		}
		refresh()

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			h.replyError(client.ID(), "", errInvalidMessage)
			continue
		}
		h.dispatch(session, msg)
	}
}

// writePump owns every write to the socket
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case msg := <-client.send:
			if err := client.conn.WriteMessage(msg); err != nil {
				h.logger.Debug("websocket write error",
					zap.String("connection_id", client.ID()),
					zap.Error(err),
				)
				client.Close()
				return
			}

		case <-ticker.C:
			if err := client.conn.Ping(); err != nil {
				client.Close()
				return
			}

		case <-client.done:
			return
		}
	}
}

func disconnectReason(err error, client *Client) string {
	select {
	case <-client.Done():
		return "closed by server"
	default:
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "idle timeout"
	}
	if gorillaws.IsCloseError(err, gorillaws.CloseNormalClosure, gorillaws.CloseGoingAway) {
		return "client closed"
	}
	return "connection lost"
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
