package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FaizGusion00/fazztrack-backend/config"
	"github.com/FaizGusion00/fazztrack-backend/middleware"
	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

// UpdateUserRequest represents the request body for updating a user profile
type UpdateUserRequest struct {
	Name  string `json:"name" binding:"omitempty,max=255"`
	Email string `json:"email" binding:"omitempty,email"`
}

// CreateUser handles POST /api/v1/users - creates the staff profile from Auth0 userinfo.
// Department and production role come from the token's custom claims.
func CreateUser(c *gin.Context) {
	// Get the Auth0 user ID from the validated JWT
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	userInfo, err := services.NewAuth0Service(config.GetConfig()).GetUserInfo(c.Request.Context(), accessToken)
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		respondMessage(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		respondMessage(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	department := models.DepartmentSales
	var productionRole *string
	if claims, err := middleware.GetClaims(c); err == nil {
		if custom, ok := claims.CustomClaims.(*middleware.CustomClaims); ok {
			if custom.Department != "" {
				department = custom.Department
			}
			if custom.ProductionRole != "" {
				role := custom.ProductionRole
				productionRole = &role
			}
		}
	}
	if !models.ValidDepartment(department) {
		respondMessage(c, http.StatusUnprocessableEntity, "INVALID_DEPARTMENT", "Unknown department: "+department)
		return
	}

	user := models.User{
		Auth0ID:        auth0ID,
		Name:           userInfo.Name,
		Email:          userInfo.Email,
		Department:     department,
		ProductionRole: productionRole,
	}

	if err := config.GetDB().WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if services.IsDuplicateKey(err) {
			respondMessage(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	respondData(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - updates current user's name or email
func UpdateMyProfile(c *gin.Context) {
	user, ok := actor(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Email != "" {
		updates["email"] = req.Email
	}

	// If no fields to update, return current user
	if len(updates) == 0 {
		respondData(c, http.StatusOK, user)
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	if err := db.Model(user).Updates(updates).Error; err != nil {
		if services.IsDuplicateKey(err) {
			respondMessage(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
			return
		}
		respondMessage(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update user profile")
		return
	}

	var updated models.User
	if err := db.First(&updated, user.ID).Error; err != nil {
		respondMessage(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch updated profile")
		return
	}

	respondData(c, http.StatusOK, updated)
}
