package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FaizGusion00/fazztrack-backend/services"
)

// TrackOrderRequest represents the public tracking lookup
type TrackOrderRequest struct {
	TrackingID string `json:"tracking_id" binding:"required"`
}

// TrackOrder handles POST /api/v1/tracking - public lookup by tracking code
func TrackOrder(c *gin.Context) {
	var req TrackOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	view, err := services.GetRegistry().Orders.TrackByCode(c.Request.Context(), req.TrackingID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, view)
}

// TrackOrderByID handles GET /api/v1/tracking/order/:id
func TrackOrderByID(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := services.GetRegistry().Orders.TrackByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, view)
}
