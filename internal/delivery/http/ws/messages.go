package ws

// Client message types.
const (
	MsgSubscribe   = "subscribe"
	MsgUnsubscribe = "unsubscribe"
)

// Server message types.
const (
	MsgSession          = "session"
	MsgSnapshot         = "snapshot"
	MsgUnsubscribed     = "unsubscribed"
	MsgError            = "error"
	MsgPermissionDenied = "permission_denied"
)

// Live query names accepted in a subscribe message.
const (
	QueryEvent         = "event"
	QueryActivePosts   = "active_posts"
	QueryAllPosts      = "all_posts"
	QueryNotifications = "notifications"
	QueryAnalytics     = "analytics"
)

// ClientMessage is a message sent by the client over the socket.
type ClientMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Query   string `json:"query,omitempty"`
	EventID string `json:"event_id,omitempty"`
	// Search filters active_posts by title.
	Search string `json:"search,omitempty"`
}

// ServerMessage is a message pushed to the client.
type ServerMessage struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Query   string `json:"query,omitempty"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionInfo is the data of the session message sent once a connection is authenticated.
type SessionInfo struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
