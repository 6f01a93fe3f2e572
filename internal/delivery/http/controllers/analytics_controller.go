package controllers

import (
	"log/slog"
	"net/http"

	"grubio/internal/delivery/http/helpers"
	"grubio/internal/domain"
)

// AnalyticsSuccessResponse is the success envelope for GET /events/{eventID}/analytics.
type AnalyticsSuccessResponse struct {
	Data  *domain.EventAnalytics `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type AnalyticsController struct {
	Logger  *slog.Logger
	Service domain.AnalyticsService
}

func NewAnalyticsController(logger *slog.Logger, svc domain.AnalyticsService) *AnalyticsController {
	return &AnalyticsController{
		Logger:  logger,
		Service: svc,
	}
}

// GetEventAnalytics godoc
// @Summary Get event analytics
// @Description Post totals, percent saved, estimated food saved and the top three posters. Event creator only.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.AnalyticsSuccessResponse "data contains the analytics"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/analytics [get]
func (c *AnalyticsController) GetEventAnalytics(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	eventID, ok := pathParam(w, r, "eventID")
	if !ok {
		return
	}
	a, err := c.Service.GetEventAnalytics(r.Context(), eventID, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}
