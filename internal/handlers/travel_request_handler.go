package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/models"
	"traveldesk/internal/services"
)

// TravelRequestHandler handles the travel request workflow endpoints
type TravelRequestHandler struct {
	travelRequestService services.TravelRequestServicer
}

// NewTravelRequestHandler creates a new TravelRequestHandler
func NewTravelRequestHandler(travelRequestService services.TravelRequestServicer) *TravelRequestHandler {
	return &TravelRequestHandler{travelRequestService: travelRequestService}
}

// CreateTravelRequestRequest represents the creation payload. Dates are
// YYYY-MM-DD strings.
type CreateTravelRequestRequest struct {
	RequesterName string `json:"requester_name" binding:"required,max=255"`
	Destination   string `json:"destination" binding:"required,max=255"`
	DepartureDate string `json:"departure_date" binding:"required"`
	ReturnDate    string `json:"return_date" binding:"required"`
	Notes         string `json:"notes"`
}

// UpdateTravelRequestRequest represents a partial update payload.
type UpdateTravelRequestRequest struct {
	RequesterName *string `json:"requester_name" binding:"omitempty,max=255"`
	Destination   *string `json:"destination" binding:"omitempty,max=255"`
	DepartureDate *string `json:"departure_date"`
	ReturnDate    *string `json:"return_date"`
	Notes         *string `json:"notes"`
}

// UpdateStatusRequest carries the admin status decision.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,travel_status"`
}

// TravelRequestFilterRequest represents the listing query parameters.
type TravelRequestFilterRequest struct {
	Status      string `form:"status" binding:"omitempty,oneof=requested approved cancelled rejected"`
	Destination string `form:"destination" binding:"omitempty,max=255"`
	StartDate   string `form:"start_date"`
	EndDate     string `form:"end_date"`
}

// List returns travel requests visible to the actor.
// @Summary     List travel requests
// @Tags        travel-requests
// @Produce     json
// @Security    BearerAuth
// @Param       status query string false "Filter by status"
// @Param       destination query string false "Filter by destination substring"
// @Param       start_date query string false "Range start (YYYY-MM-DD)"
// @Param       end_date query string false "Range end (YYYY-MM-DD)"
// @Success     200 {object} Response "Travel requests"
// @Failure     401 {object} Response "Unauthenticated"
// @Router      /travel-requests [get]
func (h *TravelRequestHandler) List(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TravelRequestFilterRequest
	if !bindQuery(c, &req) {
		return
	}

	filter := services.TravelRequestFilter{
		Status:      req.Status,
		Destination: req.Destination,
	}
	// The date range only applies when both ends are present.
	if req.StartDate != "" && req.EndDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			respondDateError(c, "start_date")
			return
		}
		end, err := parseDate(req.EndDate)
		if err != nil {
			respondDateError(c, "end_date")
			return
		}
		// Make the end bound inclusive for created_at timestamps.
		end = end.Add(24*time.Hour - time.Nanosecond)
		filter.StartDate = &start
		filter.EndDate = &end
	}

	requests, err := h.travelRequestService.List(actor, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", requests)
}

// Create opens a new travel request owned by the actor.
// @Summary     Create a travel request
// @Tags        travel-requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTravelRequestRequest true "Travel request details"
// @Success     201 {object} Response "Created travel request"
// @Failure     422 {object} Response "Validation error"
// @Router      /travel-requests [post]
func (h *TravelRequestHandler) Create(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTravelRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	departure, err := parseDate(req.DepartureDate)
	if err != nil {
		respondDateError(c, "departure_date")
		return
	}
	ret, err := parseDate(req.ReturnDate)
	if err != nil {
		respondDateError(c, "return_date")
		return
	}

	request, err := h.travelRequestService.Create(actor, services.TravelRequestInput{
		RequesterName: req.RequesterName,
		Destination:   req.Destination,
		DepartureDate: departure,
		ReturnDate:    ret,
		Notes:         req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Travel request created successfully", request)
}

// Get returns a single travel request.
// @Summary     Get a travel request
// @Tags        travel-requests
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Travel request ID"
// @Success     200 {object} Response "Travel request"
// @Failure     403 {object} Response "Forbidden"
// @Failure     404 {object} Response "Not found"
// @Router      /travel-requests/{id} [get]
func (h *TravelRequestHandler) Get(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	request, err := h.travelRequestService.Get(actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", request)
}

// Update edits a travel request that has not been approved.
// @Summary     Update a travel request
// @Tags        travel-requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Travel request ID"
// @Param       request body UpdateTravelRequestRequest true "Fields to update"
// @Success     200 {object} Response "Updated travel request"
// @Failure     403 {object} Response "Forbidden or approved"
// @Failure     404 {object} Response "Not found"
// @Failure     422 {object} Response "Validation error"
// @Router      /travel-requests/{id} [put]
func (h *TravelRequestHandler) Update(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTravelRequestRequest
	if !bindJSON(c, &req) {
		return
	}

	update := services.TravelRequestUpdate{
		RequesterName: req.RequesterName,
		Destination:   req.Destination,
		Notes:         req.Notes,
	}
	if req.DepartureDate != nil {
		departure, err := parseDate(*req.DepartureDate)
		if err != nil {
			respondDateError(c, "departure_date")
			return
		}
		update.DepartureDate = &departure
	}
	if req.ReturnDate != nil {
		ret, err := parseDate(*req.ReturnDate)
		if err != nil {
			respondDateError(c, "return_date")
			return
		}
		update.ReturnDate = &ret
	}

	request, err := h.travelRequestService.Update(actor, id, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Travel request updated successfully", request)
}

// UpdateStatus approves or cancels a travel request. Admin route.
// @Summary     Update travel request status
// @Tags        travel-requests
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Travel request ID"
// @Param       request body UpdateStatusRequest true "New status (approved|cancelled)"
// @Success     200 {object} Response "Updated travel request"
// @Failure     403 {object} Response "Forbidden or self-approval"
// @Failure     404 {object} Response "Not found"
// @Failure     422 {object} Response "Validation error"
// @Router      /travel-requests/{id}/status [patch]
func (h *TravelRequestHandler) UpdateStatus(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	request, err := h.travelRequestService.UpdateStatus(actor, id, models.TravelRequestStatus(req.Status))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Status updated successfully", request)
}

// Cancel cancels a travel request that has not been approved.
// @Summary     Cancel a travel request
// @Tags        travel-requests
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Travel request ID"
// @Success     200 {object} Response "Cancelled travel request"
// @Failure     403 {object} Response "Forbidden or approved"
// @Failure     404 {object} Response "Not found"
// @Router      /travel-requests/{id}/cancel [patch]
func (h *TravelRequestHandler) Cancel(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	request, err := h.travelRequestService.Cancel(actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Travel request cancelled successfully", request)
}

// Delete soft-deletes a travel request. Admin route.
// @Summary     Delete a travel request
// @Tags        travel-requests
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Travel request ID"
// @Success     200 {object} Response "Deleted"
// @Failure     403 {object} Response "Forbidden or approved"
// @Failure     404 {object} Response "Not found"
// @Router      /travel-requests/{id} [delete]
func (h *TravelRequestHandler) Delete(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.travelRequestService.Delete(actor, id); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Travel request deleted successfully", nil)
}

func respondDateError(c *gin.Context, field string) {
	c.JSON(apperrors.ErrValidation.StatusCode, Response{
		Success: false,
		Message: apperrors.ErrValidation.Message,
		Errors:  map[string]string{field: "Must be a valid date in YYYY-MM-DD format"},
	})
}
