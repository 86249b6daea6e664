package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

// CreateDesignRequest represents the request body for opening an order's design
type CreateDesignRequest struct {
	OrderID    uint                 `json:"order_id" binding:"required"`
	DesignerID uint                 `json:"designer_id" binding:"required"`
	Status     *models.DesignStatus `json:"status"`
}

// UpdateDesignRequest represents the request body for reassigning a design or overriding its status
type UpdateDesignRequest struct {
	DesignerID *uint                `json:"designer_id"`
	Status     *models.DesignStatus `json:"status"`
}

// CreateDesign handles POST /api/v1/designs
func CreateDesign(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req CreateDesignRequest
	if !bindJSON(c, &req) {
		return
	}

	design, err := services.GetRegistry().Designs.Create(c.Request.Context(), user, req.OrderID, req.DesignerID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, design)
}

// GetDesign handles GET /api/v1/designs/:id
func GetDesign(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	design, err := services.GetRegistry().Designs.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, design)
}

// UpdateDesign handles PUT /api/v1/designs/:id
func UpdateDesign(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateDesignRequest
	if !bindJSON(c, &req) {
		return
	}

	design, err := services.GetRegistry().Designs.Update(c.Request.Context(), user, id, services.DesignUpdate{
		DesignerID: req.DesignerID,
		Status:     req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, design)
}

// UploadDesignFile handles POST /api/v1/designs/:id/upload - multipart field "file"
func UploadDesignFile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	// A missing file is reported by upload validation
	fh, _ := c.FormFile("file")

	design, err := services.GetRegistry().Designs.AttachFile(c.Request.Context(), user, id, fh)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, design)
}

// FinalizeDesign handles POST /api/v1/designs/:id/finalize
func FinalizeDesign(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	design, err := services.GetRegistry().Designs.Finalize(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, design)
}

// DeleteDesign handles DELETE /api/v1/designs/:id
func DeleteDesign(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetRegistry().Designs.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
