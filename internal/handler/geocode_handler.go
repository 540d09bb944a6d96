package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vaudterroir/api/internal/utils"
	"github.com/vaudterroir/api/pkg/nominatim"
)

// GeocodeHandler proxies address assist requests to the geocoding
// provider so the browser never talks to it directly.
type GeocodeHandler struct {
	geocoder *nominatim.Client
}

// NewGeocodeHandler constructs a GeocodeHandler.
func NewGeocodeHandler(geocoder *nominatim.Client) *GeocodeHandler {
	return &GeocodeHandler{geocoder: geocoder}
}

// Reverse handles GET /v1/geocode/reverse?lat=..&lng=..
func (h *GeocodeHandler) Reverse(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		utils.Error(c, 400, "INVALID_COORDINATES", "lat and lng are required numbers")
		return
	}

	address, err := h.geocoder.Reverse(c.Request.Context(), lat, lng)
	if err != nil {
		utils.Error(c, 502, "GEOCODER_ERROR", "Address lookup failed")
		return
	}

	utils.Success(c, 200, "Address resolved", gin.H{"address": address})
}

// Search handles GET /v1/geocode/search?q=..
func (h *GeocodeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		utils.Error(c, 400, "INVALID_REQUEST", "q is required")
		return
	}

	places, err := h.geocoder.Search(c.Request.Context(), query)
	if err != nil {
		utils.Error(c, 502, "GEOCODER_ERROR", "Place search failed")
		return
	}

	utils.Success(c, 200, "Places found", gin.H{"places": places})
}
