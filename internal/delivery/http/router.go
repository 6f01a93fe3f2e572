package http

import (
	"net/http"

	"grubio/internal/delivery/http/controllers"
	"grubio/internal/delivery/http/middleware"
	"grubio/internal/delivery/http/ws"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth          *controllers.AuthController
	Events        *controllers.EventController
	Posts         *controllers.PostController
	Analytics     *controllers.AnalyticsController
	Notifications *controllers.NotificationController
	Health        *controllers.HealthController
	Live          *ws.Handler
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, auth middleware.Authenticator) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(auth)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)
	mux.HandleFunc("POST /auth/logout", requireAuth(c.Auth.Logout))

	// Current user
	mux.HandleFunc("GET /me", requireAuth(c.Auth.GetMe))
	mux.HandleFunc("PATCH /me", requireAuth(c.Auth.UpdateMe))
	mux.HandleFunc("POST /me/devices", requireAuth(c.Notifications.RegisterDevice))

	// Events
	mux.HandleFunc("POST /events", requireAuth(c.Events.CreateEvent))
	mux.HandleFunc("GET /events", requireAuth(c.Events.ListEvents))
	mux.HandleFunc("POST /events/join", requireAuth(c.Events.JoinEvent))
	mux.HandleFunc("POST /events/join/qr", requireAuth(c.Events.JoinEventByQR))
	mux.HandleFunc("GET /events/{eventID}", requireAuth(c.Events.GetEvent))
	mux.HandleFunc("GET /events/{eventID}/qr", requireAuth(c.Events.GetEventQR))
	mux.HandleFunc("GET /events/{eventID}/analytics", requireAuth(c.Analytics.GetEventAnalytics))

	// Posts
	mux.HandleFunc("POST /events/{eventID}/posts", requireAuth(c.Posts.CreatePost))
	mux.HandleFunc("GET /events/{eventID}/posts", requireAuth(c.Posts.ListPosts))
	mux.HandleFunc("POST /events/{eventID}/posts/uploads", requireAuth(c.Posts.CreateImageUpload))
	mux.HandleFunc("POST /events/{eventID}/posts/{postID}/claim", requireAuth(c.Posts.ClaimPost))
	mux.HandleFunc("DELETE /events/{eventID}/posts/{postID}/claim", requireAuth(c.Posts.UnclaimPost))
	mux.HandleFunc("POST /events/{eventID}/posts/{postID}/claim/toggle", requireAuth(c.Posts.ToggleClaim))
	mux.HandleFunc("POST /events/{eventID}/posts/{postID}/complete", requireAuth(c.Posts.CompletePost))

	// Notifications
	mux.HandleFunc("GET /notifications", requireAuth(c.Notifications.ListNotifications))
	mux.HandleFunc("POST /notifications/read-all", requireAuth(c.Notifications.MarkAllRead))
	mux.HandleFunc("POST /notifications/{notificationID}/read", requireAuth(c.Notifications.MarkRead))

	// Live queries
	mux.HandleFunc("GET /ws", c.Live.ServeWS)

	mux.HandleFunc("GET /healthz", c.Health.Healthz)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
