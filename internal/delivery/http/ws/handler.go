// Package ws serves live queries over a websocket. Each subscription streams a
// fresh snapshot whenever the documents it reads change.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/delivery/http/middleware"
	"grubio/internal/domain"
	"grubio/internal/realtime"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	snapshotBuffer = 16
)

// SessionAuthenticator authenticates the connection token and re-checks the session on every snapshot.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
	CheckSession(ctx context.Context, principal *domain.Principal) error
}

// Services are the read models a live query can run.
type Services struct {
	Events        domain.EventService
	Posts         domain.PostService
	Notifications domain.NotificationService
	Analytics     domain.AnalyticsService
}

type Handler struct {
	Logger   *slog.Logger
	Auth     SessionAuthenticator
	Hub      *realtime.Hub
	Registry *realtime.Registry
	Services Services

	upgrader websocket.Upgrader
}

// NewHandler returns a websocket handler. allowedOrigins restricts browser
// origins; an empty list or "*" accepts any origin.
func NewHandler(logger *slog.Logger, auth SessionAuthenticator, hub *realtime.Hub, registry *realtime.Registry, svcs Services, allowedOrigins []string) *Handler {
	return &Handler{
		Logger:   logger,
		Auth:     auth,
		Hub:      hub,
		Registry: registry,
		Services: svcs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	origins := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 || slices.Contains(origins, "*") {
			return true
		}
		return slices.Contains(origins, origin)
	}
}

// ServeWS godoc
// @Summary Live queries
// @Description Upgrades to a websocket. Authenticate with ?token= or a Bearer header. Send {"type":"subscribe","id","query","event_id"} with query one of event, active_posts, all_posts, notifications, analytics; {"type":"unsubscribe","id"} stops it. A permission_denied message is sent and the socket closed when the session ends.
// @Tags live
// @Param token query string false "Session token"
// @Success 101 "Switching Protocols"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized or session_ended"
// @Router /ws [get]
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		t, err := middleware.BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "token required")
			return
		}
		token = t
	}
	principal, err := h.Auth.Authenticate(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionEnded) {
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeSessionEnded, "session ended")
			return
		}
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.WarnContext(r.Context(), "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	scope := h.Registry.Open(principal.SessionID)
	defer scope.Close()

	c := &connection{
		handler:   h,
		conn:      conn,
		principal: principal,
		scope:     scope,
		snapshots: make(chan realtime.Snapshot, snapshotBuffer),
		control:   make(chan ServerMessage, snapshotBuffer),
		logger:    h.Logger.With("user_id", principal.UserID, "session_id", principal.SessionID),
	}
	c.logger.Info("websocket connected")
	c.run(r.Context())
	c.logger.Info("websocket disconnected")
}

type connection struct {
	handler   *Handler
	conn      *websocket.Conn
	principal *domain.Principal
	scope     *realtime.Scope
	snapshots chan realtime.Snapshot
	control   chan ServerMessage
	logger    *slog.Logger
}

var errPermissionDenied = errors.New("permission denied")

func (c *connection) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c.control <- ServerMessage{Type: MsgSession, Data: SessionInfo{UserID: c.principal.UserID, Email: c.principal.Email}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.readLoop(gctx) })
	g.Go(func() error {
		err := c.writeLoop(gctx)
		// Unblock the reader.
		_ = c.conn.Close()
		return err
	})
	if err := g.Wait(); err != nil && !errors.Is(err, errPermissionDenied) && !isClose(err) {
		c.logger.Warn("websocket closed with error", "err", err)
	}
}

func isClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
		errors.Is(err, context.Canceled) || errors.Is(err, websocket.ErrCloseSent) || strings.Contains(err.Error(), "use of closed network connection")
}

func (c *connection) readLoop(ctx context.Context) error {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				return fmt.Errorf("read: %w", err)
			}
			return context.Canceled
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := c.reply(ctx, ServerMessage{Type: MsgError, Code: helpers.ErrCodeBadRequest, Message: "invalid message format"}); err != nil {
				return err
			}
			continue
		}
		if err := c.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (c *connection) handle(ctx context.Context, msg ClientMessage) error {
	if msg.ID == "" {
		return c.reply(ctx, ServerMessage{Type: MsgError, Code: helpers.ErrCodeBadRequest, Message: "id is required"})
	}
	switch msg.Type {
	case MsgSubscribe:
		fn, topics, err := c.query(msg)
		if err != nil {
			return c.reply(ctx, ServerMessage{Type: MsgError, ID: msg.ID, Query: msg.Query, Code: helpers.ErrCodeBadRequest, Message: err.Error()})
		}
		sub := c.handler.Hub.Subscribe(ctx, msg.ID, msg.Query, topics, fn, c.snapshots)
		if err := c.scope.Track(sub); err != nil {
			return errPermissionDenied
		}
		return nil
	case MsgUnsubscribe:
		if !c.scope.Cancel(msg.ID) {
			return c.reply(ctx, ServerMessage{Type: MsgError, ID: msg.ID, Code: helpers.ErrCodeNotFound, Message: "no such subscription"})
		}
		return c.reply(ctx, ServerMessage{Type: MsgUnsubscribed, ID: msg.ID})
	default:
		return c.reply(ctx, ServerMessage{Type: MsgError, ID: msg.ID, Code: helpers.ErrCodeBadRequest, Message: "unknown message type"})
	}
}

func (c *connection) reply(ctx context.Context, m ServerMessage) error {
	select {
	case c.control <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// query maps a subscribe message to its read function and the topics that invalidate it.
func (c *connection) query(msg ClientMessage) (realtime.QueryFunc, []string, error) {
	uid := c.principal.UserID
	svcs := c.handler.Services
	if msg.Query != QueryNotifications && msg.EventID == "" {
		return nil, nil, errors.New("event_id is required")
	}
	eventID := msg.EventID
	switch msg.Query {
	case QueryEvent:
		return func(ctx context.Context) (any, error) {
			return svcs.Events.GetEvent(ctx, eventID, uid)
		}, []string{domain.EventTopic(eventID)}, nil
	case QueryActivePosts:
		search := msg.Search
		return func(ctx context.Context) (any, error) {
			return svcs.Posts.ListActivePosts(ctx, eventID, uid, search)
		}, []string{domain.EventPostsTopic(eventID), domain.EventTopic(eventID)}, nil
	case QueryAllPosts:
		return func(ctx context.Context) (any, error) {
			return svcs.Posts.ListAllPosts(ctx, eventID, uid)
		}, []string{domain.EventPostsTopic(eventID), domain.EventTopic(eventID)}, nil
	case QueryAnalytics:
		return func(ctx context.Context) (any, error) {
			return svcs.Analytics.GetEventAnalytics(ctx, eventID, uid)
		}, []string{domain.EventPostsTopic(eventID)}, nil
	case QueryNotifications:
		return func(ctx context.Context) (any, error) {
			return svcs.Notifications.ListUnread(ctx, uid)
		}, []string{domain.NotificationsTopic(uid)}, nil
	default:
		return nil, nil, fmt.Errorf("unknown query %q", msg.Query)
	}
}

func (c *connection) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			select {
			case <-c.scope.Done():
				return c.deny("session ended")
			default:
			}
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		case <-c.scope.Done():
			return c.deny("session ended")
		case m := <-c.control:
			if err := c.writeJSON(m); err != nil {
				return err
			}
		case snap := <-c.snapshots:
			if err := c.deliver(ctx, snap); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return err
			}
		}
	}
}

func (c *connection) deliver(ctx context.Context, snap realtime.Snapshot) error {
	if err := c.handler.Auth.CheckSession(ctx, c.principal); err != nil {
		if errors.Is(err, domain.ErrSessionEnded) {
			return c.deny("session ended")
		}
		c.logger.Warn("session check failed", "err", err)
	}
	if snap.Err != nil {
		if errors.Is(snap.Err, domain.ErrSessionEnded) {
			return c.deny("session ended")
		}
		_, code := helpers.ErrorStatus(snap.Err)
		message := snap.Err.Error()
		if code == helpers.ErrCodeInternalError {
			c.logger.Error("live query failed", "subscription_id", snap.SubscriptionID, "query", snap.Query, "err", snap.Err)
			message = "internal server error"
		}
		return c.writeJSON(ServerMessage{Type: MsgError, ID: snap.SubscriptionID, Query: snap.Query, Code: code, Message: message})
	}
	return c.writeJSON(ServerMessage{Type: MsgSnapshot, ID: snap.SubscriptionID, Query: snap.Query, Data: snap.Data})
}

// deny tells the client its session is over and closes the socket.
func (c *connection) deny(message string) error {
	c.scope.Close()
	_ = c.writeJSON(ServerMessage{Type: MsgPermissionDenied, Code: helpers.ErrCodeSessionEnded, Message: message})
	_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message))
	return errPermissionDenied
}

func (c *connection) writeJSON(m ServerMessage) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(m)
}

func (c *connection) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}
