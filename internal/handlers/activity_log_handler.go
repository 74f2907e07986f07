package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traveldesk/internal/pagination"
	"traveldesk/internal/services"
)

// activityLogDefaultPageSize matches the audit listing's historical default.
const activityLogDefaultPageSize = 50

// ActivityLogHandler serves the admin audit trail listing
type ActivityLogHandler struct {
	activityService services.ActivityServicer
}

// NewActivityLogHandler creates a new ActivityLogHandler
func NewActivityLogHandler(activityService services.ActivityServicer) *ActivityLogHandler {
	return &ActivityLogHandler{activityService: activityService}
}

// ActivityLogFilterRequest represents the audit listing query parameters
type ActivityLogFilterRequest struct {
	UserID    *uint  `form:"user_id"`
	Action    string `form:"action" binding:"omitempty,log_action"`
	ModelType string `form:"model_type" binding:"omitempty,max=255"`
	pagination.PageRequest
}

// List returns a paginated audit trail, newest first. Admin route.
// @Summary     List activity logs
// @Tags        activity-logs
// @Produce     json
// @Security    BearerAuth
// @Param       user_id query int false "Filter by acting user"
// @Param       action query string false "Filter by action"
// @Param       model_type query string false "Filter by model type"
// @Param       page query int false "Page number"
// @Param       per_page query int false "Page size (default 50)"
// @Success     200 {object} Response "Activity logs"
// @Failure     401 {object} Response "Unauthenticated"
// @Failure     403 {object} Response "Forbidden"
// @Router      /activity-logs [get]
func (h *ActivityLogHandler) List(c *gin.Context) {
	var req ActivityLogFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	if req.PageSize == 0 {
		req.PageSize = activityLogDefaultPageSize
	}

	result, err := h.activityService.List(services.ActivityLogFilter{
		UserID:    req.UserID,
		Action:    req.Action,
		ModelType: req.ModelType,
	}, req.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", result)
}
