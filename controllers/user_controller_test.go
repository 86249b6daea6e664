package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/FaizGusion00/fazztrack-backend/config"
	"github.com/FaizGusion00/fazztrack-backend/middleware"
	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
	"github.com/FaizGusion00/fazztrack-backend/testutil"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db := testutil.OpenDB(t)
	config.SetDB(db)
	t.Cleanup(func() { config.SetDB(nil) })
	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	return router
}

// setupMockAuth0Server creates a mock HTTP server that simulates Auth0's /userinfo endpoint
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 7 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		userInfo, exists := userInfoMap[authHeader[7:]]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

// mockAuthMiddleware sets up the context exactly as the real EnsureValidToken middleware does
func mockAuthMiddleware(auth0ID, department, productionRole, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			CustomClaims: &middleware.CustomClaims{
				Department:     department,
				ProductionRole: productionRole,
			},
		})
		c.Next()
	}
}

func useMockAuth0(t *testing.T, userInfoMap map[string]*services.Auth0UserInfo) {
	mockServer := setupMockAuth0Server(userInfoMap)
	original := config.GetConfig()
	config.SetConfig(&config.Config{Auth0Domain: mockServer.URL})
	t.Cleanup(func() {
		mockServer.Close()
		config.SetConfig(original)
	})
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name           string
		auth0ID        string
		email          string
		userName       string
		department     string
		productionRole string
		expectedStatus int
		expectedCode   string
		wantDepartment string
	}{
		{
			name:           "Sales by default",
			auth0ID:        "auth0|sales",
			email:          "sales@example.com",
			userName:       "Sales Person",
			expectedStatus: http.StatusCreated,
			wantDepartment: models.DepartmentSales,
		},
		{
			name:           "Production staff with role claim",
			auth0ID:        "auth0|printer",
			email:          "printer@example.com",
			userName:       "Printer Person",
			department:     models.DepartmentProductionStaff,
			productionRole: models.RolePrinter,
			expectedStatus: http.StatusCreated,
			wantDepartment: models.DepartmentProductionStaff,
		},
		{
			name:           "Unknown department",
			auth0ID:        "auth0|ghost",
			email:          "ghost@example.com",
			userName:       "Ghost",
			department:     "Marketing",
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   "INVALID_DEPARTMENT",
		},
		{
			name:           "Fail with missing email",
			auth0ID:        "auth0|noemail",
			userName:       "No Email User",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_EMAIL",
		},
		{
			name:           "Fail with missing name",
			auth0ID:        "auth0|noname",
			email:          "noname@example.com",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "MISSING_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db.Exec("DELETE FROM users")

			token := "token-" + tt.auth0ID
			useMockAuth0(t, map[string]*services.Auth0UserInfo{
				token: {Sub: tt.auth0ID, Email: tt.email, Name: tt.userName},
			})

			router := setupTestRouter()
			router.POST("/users", mockAuthMiddleware(tt.auth0ID, tt.department, tt.productionRole, token), CreateUser)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))

			assert.Equal(t, tt.expectedStatus, w.Code, "Response body: %s", w.Body.String())
			response := decodeResponse(t, w)

			if tt.expectedStatus == http.StatusCreated {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.email, data["email"])
				assert.Equal(t, tt.auth0ID, data["auth0_id"])
				assert.Equal(t, tt.wantDepartment, data["department"])
				if tt.productionRole != "" {
					assert.Equal(t, tt.productionRole, data["production_role"])
				} else {
					assert.Nil(t, data["production_role"])
				}
				return
			}
			assert.False(t, response["success"].(bool))
			assert.Equal(t, tt.expectedCode, response["error"].(map[string]interface{})["code"])
		})
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	testutil.CreateUser(t, db, "existing", models.DepartmentSales, "")

	useMockAuth0(t, map[string]*services.Auth0UserInfo{
		"token": {Sub: "auth0|existing", Email: "new@example.com", Name: "Again"},
	})

	router := setupTestRouter()
	router.POST("/users", mockAuthMiddleware("auth0|existing", "", "", "token"), CreateUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "USER_EXISTS")
}

func TestCreateUser_Auth0Failure(t *testing.T) {
	setupTestDB(t)
	useMockAuth0(t, map[string]*services.Auth0UserInfo{})

	router := setupTestRouter()
	router.POST("/users", mockAuthMiddleware("auth0|x", "", "", "unknown-token"), CreateUser)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/users", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH0_ERROR")
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	user := testutil.CreateUser(t, db, "designer", models.DepartmentDesigner, models.RoleDesigner)

	router := setupTestRouter()
	router.GET("/users/me", testutil.AuthAs(user), GetMyProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "Designer", data["department"])
	assert.Equal(t, "Designer", data["production_role"])
}

func TestGetMyProfile_NoCurrentUser(t *testing.T) {
	router := setupTestRouter()
	router.GET("/users/me", GetMyProfile)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateMyProfile(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedCode   string
		wantName       string
		wantEmail      string
	}{
		{"update both", `{"name":"New Name","email":"new@fazztrack.test"}`, http.StatusOK, "", "New Name", "new@fazztrack.test"},
		{"partial update", `{"name":"Only Name"}`, http.StatusOK, "", "Only Name", "sales@fazztrack.test"},
		{"empty update", `{}`, http.StatusOK, "", "sales", "sales@fazztrack.test"},
		{"invalid email", `{"email":"not-an-email"}`, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "", ""},
		{"duplicate email", `{"email":"other@fazztrack.test"}`, http.StatusConflict, "EMAIL_EXISTS", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			user := testutil.CreateUser(t, db, "sales", models.DepartmentSales, "")
			testutil.CreateUser(t, db, "other", models.DepartmentSales, "")

			router := setupTestRouter()
			router.PUT("/users/me", testutil.AuthAs(user), UpdateMyProfile)

			req := httptest.NewRequest(http.MethodPut, "/users/me", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			response := decodeResponse(t, w)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, response["error"].(map[string]interface{})["code"])
				return
			}
			data := response["data"].(map[string]interface{})
			assert.Equal(t, tt.wantName, data["name"])
			assert.Equal(t, tt.wantEmail, data["email"])
		})
	}
}
