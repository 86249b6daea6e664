package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func designRoutes(r gin.IRoutes) {
	orderRoutes(r)
	r.POST("/designs", CreateDesign)
	r.GET("/designs/:id", GetDesign)
	r.PUT("/designs/:id", UpdateDesign)
	r.POST("/designs/:id/upload", UploadDesignFile)
	r.POST("/designs/:id/finalize", FinalizeDesign)
	r.DELETE("/designs/:id", DeleteDesign)
	r.POST("/files/upload", UploadFile)
	r.GET("/files/:id", GetFile)
}

func TestDesignHandlers(t *testing.T) {
	env := newDomainEnv(t)
	sales := env.as(env.fx.Sales, designRoutes)
	designer := env.as(env.fx.Designer, designRoutes)

	orderID := idOf(t, dataOf(t, env.do(sales, http.MethodPost, "/api/v1/orders", env.orderBody())))

	w := env.do(sales, http.MethodPost, "/api/v1/designs", map[string]interface{}{
		"order_id": orderID, "designer_id": env.fx.Designer.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	design := dataOf(t, w)
	assert.Equal(t, "new", design["status"])
	designPath := fmt.Sprintf("/api/v1/designs/%d", idOf(t, design))

	w = env.do(designer, http.MethodPost, designPath+"/finalize", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "DESIGN_FILE_REQUIRED", errorOf(t, w)["code"])

	w = env.upload(designer, designPath+"/upload", "", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MISSING_FILE", errorOf(t, w)["code"])

	w = env.upload(designer, designPath+"/upload", "front.png", []byte("png bytes"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	uploaded := dataOf(t, w)
	assert.NotEmpty(t, uploaded["file_url"])
	assert.Equal(t, 1, env.files.Len())

	w = env.do(designer, http.MethodPost, designPath+"/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "finalized", dataOf(t, w)["status"])

	w = env.do(sales, http.MethodGet, designPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, dataOf(t, w)["file_url"], "https://files.test/designs/")
}

func TestFileHandlers(t *testing.T) {
	env := newDomainEnv(t)
	sales := env.as(env.fx.Sales, designRoutes)

	w := env.upload(sales, "/api/v1/files/upload", "receipt.pdf", []byte("%PDF-1.4"), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	fileID := idOf(t, dataOf(t, w))

	w = env.upload(sales, "/api/v1/files/upload", "artwork.psd", []byte("8BPS"), map[string]string{"kind": "receipts"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_FILE_FORMAT", errorOf(t, w)["code"])

	w = env.upload(sales, "/api/v1/files/upload", "artwork.psd", []byte("8BPS"), map[string]string{"kind": "designs"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(sales, http.MethodGet, fmt.Sprintf("/api/v1/files/%d", fileID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := dataOf(t, w)
	assert.Equal(t, "receipt.pdf", data["file"].(map[string]interface{})["file_name"])
	assert.Contains(t, data["url"], "receipts/")
}
