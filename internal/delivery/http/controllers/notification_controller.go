package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/domain"
)

// RegisterDeviceRequest is the request body for POST /me/devices.
type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"required,max=16"`
}

// ListNotificationsResponse is the data of a paginated GET /notifications.
type ListNotificationsResponse struct {
	Items      []*domain.Notification `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// MarkAllReadResponse reports how many notifications were marked read.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

// NotificationListSuccessResponse is the success envelope for GET /notifications.
type NotificationListSuccessResponse struct {
	Data  *ListNotificationsResponse `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// NotificationSuccessResponse is the success envelope for POST /notifications/{notificationID}/read.
type NotificationSuccessResponse struct {
	Data  *domain.Notification `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// DeviceSuccessResponse is the success envelope for POST /me/devices.
type DeviceSuccessResponse struct {
	Data  *domain.Device    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type NotificationController struct {
	Logger  *slog.Logger
	Service domain.NotificationService
}

func NewNotificationController(logger *slog.Logger, svc domain.NotificationService) *NotificationController {
	return &NotificationController{
		Logger:  logger,
		Service: svc,
	}
}

// ListNotifications godoc
// @Summary List my notifications
// @Description Newest first. unread=true returns every unread notification without paging; otherwise page and page_size apply.
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.NotificationListSuccessResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications [get]
func (c *NotificationController) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	unread := false
	if s := r.URL.Query().Get("unread"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unread must be a boolean")
			return
		}
		unread = v
	}
	if unread {
		items, err := c.Service.ListUnread(r.Context(), p.UserID)
		if err != nil {
			helpers.WriteServiceError(w, r, c.Logger, err)
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{
			Items:      items,
			Pagination: helpers.NewPaginationMeta(1, len(items), len(items)),
		})
		return
	}
	params := helpers.ParsePagination(r)
	items, total, err := c.Service.ListAll(r.Context(), p.UserID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListNotificationsResponse{
		Items:      items,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// MarkRead godoc
// @Summary Mark a notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param notificationID path string true "Notification ID"
// @Success 200 {object} controllers.NotificationSuccessResponse "data contains the notification"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/{notificationID}/read [post]
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathParam(w, r, "notificationID")
	if !ok {
		return
	}
	n, err := c.Service.MarkRead(r.Context(), id, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, n)
}

// MarkAllRead godoc
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.updated is the number of notifications changed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /notifications/read-all [post]
func (c *NotificationController) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	n, err := c.Service.MarkAllRead(r.Context(), p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, MarkAllReadResponse{Updated: n})
}

// RegisterDevice godoc
// @Summary Register a push device
// @Description Store an APNs (ios) or FCM (android) token for claim notifications. Re-registering a token moves it to the caller.
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body RegisterDeviceRequest true "Device token"
// @Success 201 {object} controllers.DeviceSuccessResponse "data contains the device"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/devices [post]
func (c *NotificationController) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req RegisterDeviceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	d, err := c.Service.RegisterDevice(r.Context(), p.UserID, req.Token, req.Platform)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, d)
}
