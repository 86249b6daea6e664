package controllers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/FaizGusion00/fazztrack-backend/middleware"
	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
	"github.com/FaizGusion00/fazztrack-backend/testutil"
)

// domainEnv is a seeded database with the service registry installed
type domainEnv struct {
	t     *testing.T
	fx    *testutil.Fixtures
	files *services.MemoryFileStore
}

func newDomainEnv(t *testing.T) *domainEnv {
	t.Helper()

	db := setupTestDB(t)
	gate, err := services.NewCasbinGate()
	require.NoError(t, err)

	env := &domainEnv{t: t, fx: testutil.Seed(t, db), files: services.NewMemoryFileStore()}
	previous := services.GetRegistry()
	services.InitRegistry(services.Deps{
		DB:            db,
		Gate:          gate,
		Files:         env.files,
		PublicBaseURL: "https://track.fazztrack.test",
	})
	t.Cleanup(func() { services.SetRegistry(previous) })
	return env
}

// as builds a router whose requests act as user
func (e *domainEnv) as(user *models.User, register func(r gin.IRoutes)) *gin.Engine {
	router := setupTestRouter()
	group := router.Group("/api/v1", func(c *gin.Context) {
		middleware.SetCurrentUser(c, user)
		c.Next()
	})
	register(group)
	return router
}

func (e *domainEnv) do(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func (e *domainEnv) upload(router *gin.Engine, path, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	e.t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(e.t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// orderBody is a valid create order request: 10 x 45.00 with a 100.00 design deposit
func (e *domainEnv) orderBody() map[string]interface{} {
	day := func(offset int) string { return time.Now().AddDate(0, 0, offset).Format(dateLayout) }
	return map[string]interface{}{
		"client_id":               e.fx.Client.ID,
		"job_name":                "Team jerseys",
		"delivery_method":         "self_collect",
		"due_date_design":         day(2),
		"due_date_production":     day(9),
		"estimated_delivery_date": day(12),
		"items": []map[string]interface{}{
			{"product_id": e.fx.Product.ID, "quantity": 10, "price": "45.00"},
		},
		"payments": []map[string]interface{}{
			{"type": "deposit_design", "payment_method": "bank_transfer", "amount": 100, "payment_date": day(0)},
		},
	}
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	response := decodeResponse(t, w)
	require.Equal(t, true, response["success"], w.Body.String())
	return response["data"].(map[string]interface{})
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	response := decodeResponse(t, w)
	require.Equal(t, false, response["success"], w.Body.String())
	return response["error"].(map[string]interface{})
}

func idOf(t *testing.T, data map[string]interface{}) uint {
	t.Helper()
	id, ok := data["id"].(float64)
	require.True(t, ok, "missing id in %v", data)
	return uint(id)
}
