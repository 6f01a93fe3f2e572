package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string     `json:"title" validate:"required,max=120"`
	Description string     `json:"description" validate:"max=2000"`
	Date        *time.Time `json:"date"`
}

// JoinEventRequest is the request body for POST /events/join.
type JoinEventRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

// JoinEventByQRRequest is the request body for POST /events/join/qr.
type JoinEventByQRRequest struct {
	Payload string `json:"payload" validate:"required,max=64"`
}

// JoinEventResponse reports the joined event and whether the caller was added by this request.
type JoinEventResponse struct {
	Event  *domain.Event `json:"event"`
	Joined bool          `json:"joined"`
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for GET /events.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// JoinEventSuccessResponse is the success envelope for the join endpoints.
type JoinEventSuccessResponse struct {
	Data  *JoinEventResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create a food-sharing event. The caller becomes its creator and first attendee; a unique 6-character join code is assigned.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: unavailable (no join code could be allocated)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now().UTC()
	event := domain.NewEvent(req.Title, req.Description, req.Date, p.UserID, now, now)
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List my events
// @Description Events the caller attends, newest first.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse "data contains the events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	events, err := c.Service.ListMyEvents(r.Context(), p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the event"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not an attendee)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// GetEventQR godoc
// @Summary Get the join QR code
// @Description PNG QR code encoding the event's join code, for organizers to display.
// @Tags events
// @Produce png
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {file} binary "PNG image"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/qr [get]
func (c *EventController) GetEventQR(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	png, err := c.Service.JoinQRCode(r.Context(), eventID, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// JoinEvent godoc
// @Summary Join an event by code
// @Description Join with a 6-character code. Case and surrounding spaces are ignored. Joining an event twice is a no-op.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinEventRequest true "Join code"
// @Success 200 {object} controllers.JoinEventSuccessResponse "data.joined is false when already an attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (no event with that code, or a malformed code)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/join [post]
func (c *EventController) JoinEvent(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req JoinEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, joined, err := c.Service.JoinByCode(r.Context(), req.Code, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, JoinEventResponse{Event: event, Joined: joined})
}

// JoinEventByQR godoc
// @Summary Join an event by scanned QR payload
// @Description Accepts the raw scanned text, either "GRUBIO:<code>" or a bare code.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JoinEventByQRRequest true "Scanned payload"
// @Success 200 {object} controllers.JoinEventSuccessResponse "data.joined is false when already an attendee"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/join/qr [post]
func (c *EventController) JoinEventByQR(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var req JoinEventByQRRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, joined, err := c.Service.JoinByQR(r.Context(), req.Payload, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, JoinEventResponse{Event: event, Joined: joined})
}
