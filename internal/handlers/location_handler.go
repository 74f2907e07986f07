package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"traveldesk/internal/services"
)

// LocationHandler serves the municipality lookup endpoints
type LocationHandler struct {
	locationService services.LocationServicer
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationService services.LocationServicer) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// GetCities lists municipalities, optionally filtered by a search query.
// @Summary     Search cities
// @Tags        locations
// @Produce     json
// @Security    BearerAuth
// @Param       q query string false "Search query (name, state, or uf)"
// @Success     200 {object} Response "Cities"
// @Failure     500 {object} Response "Upstream error"
// @Router      /locations/cities [get]
func (h *LocationHandler) GetCities(c *gin.Context) {
	query := c.Query("q")

	cities, err := h.locationService.SearchCities(c.Request.Context(), query)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    cities,
		"meta": gin.H{
			"total":     len(cities),
			"has_query": query != "",
		},
	})
}

// GetDestinations lists the distinct destinations used by travel requests.
// @Summary     List destinations
// @Tags        locations
// @Produce     json
// @Success     200 {object} Response "Destinations"
// @Router      /locations/destinations [get]
func (h *LocationHandler) GetDestinations(c *gin.Context) {
	destinations, err := h.locationService.Destinations(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "", destinations)
}
