package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FaizGusion00/fazztrack-backend/services"
	"github.com/FaizGusion00/fazztrack-backend/utils"
)

// UploadFile handles POST /api/v1/files/upload - multipart fields "file" and "kind" (receipts or designs)
func UploadFile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	kind := utils.UploadKind(c.DefaultPostForm("kind", string(utils.UploadReceipt)))
	fh, _ := c.FormFile("file")

	attachment, err := services.GetRegistry().Attachments.Upload(c.Request.Context(), user, fh, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusCreated, attachment)
}

// GetFile handles GET /api/v1/files/:id - the attachment with a short-lived download URL
func GetFile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	attachment, url, err := services.GetRegistry().Attachments.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"file": attachment,
		"url":  url,
	})
}
