package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

// CreateJobRequest represents the request body for opening a production job
type CreateJobRequest struct {
	OrderID    uint              `json:"order_id" binding:"required"`
	Phase      models.Phase      `json:"phase" binding:"required"`
	AssignedTo uint              `json:"assigned_to" binding:"required"`
	Status     *models.JobStatus `json:"status"`
	Remarks    *string           `json:"remarks"`
}

// UpdateJobRequest represents the request body for reassigning a job or overriding its status
type UpdateJobRequest struct {
	AssignedTo *uint             `json:"assigned_to"`
	Status     *models.JobStatus `json:"status"`
	Remarks    *string           `json:"remarks"`
}

// jobResponse adds the printable scan URL to a job
type jobResponse struct {
	*models.Job
	ScanURL string `json:"scan_url"`
}

func withScanURL(job *models.Job) jobResponse {
	return jobResponse{Job: job, ScanURL: services.GetRegistry().Jobs.ScanURL(job)}
}

// CreateJob handles POST /api/v1/jobs
func CreateJob(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req CreateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := services.GetRegistry().Jobs.Create(c.Request.Context(), user, services.JobInput{
		OrderID:    req.OrderID,
		Phase:      req.Phase,
		AssignedTo: req.AssignedTo,
		Status:     req.Status,
		Remarks:    req.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, withScanURL(job))
}

// GetJob handles GET /api/v1/jobs/:id
func GetJob(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	job, err := services.GetRegistry().Jobs.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, withScanURL(job))
}

// UpdateJob handles PUT /api/v1/jobs/:id
func UpdateJob(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateJobRequest
	if !bindJSON(c, &req) {
		return
	}

	job, err := services.GetRegistry().Jobs.Update(c.Request.Context(), user, id, services.JobUpdate{
		AssignedTo: req.AssignedTo,
		Status:     req.Status,
		Remarks:    req.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, withScanURL(job))
}

// StartJob handles POST /api/v1/jobs/:id/start
func StartJob(c *gin.Context) {
	jobAction(c, services.GetRegistry().Jobs.Start)
}

// CompleteJob handles POST /api/v1/jobs/:id/complete and its /end alias
func CompleteJob(c *gin.Context) {
	jobAction(c, services.GetRegistry().Jobs.Complete)
}

// DeleteJob handles DELETE /api/v1/jobs/:id
func DeleteJob(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := services.GetRegistry().Jobs.Delete(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ScanJob handles GET /api/v1/jobs/qr/:token - resolves a printed job sheet
func ScanJob(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	result, err := services.GetRegistry().Jobs.AccessByScanToken(c.Request.Context(), user, c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, result)
}

type jobTransition func(ctx context.Context, actor *models.User, id uint) (*models.Job, error)

func jobAction(c *gin.Context, transition jobTransition) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	job, err := transition(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, withScanURL(job))
}
