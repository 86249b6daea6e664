package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"

	"github.com/FaizGusion00/fazztrack-backend/middleware"
	"github.com/FaizGusion00/fazztrack-backend/models"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, department string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://fazztrack.test/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope:      strings.Join(scopes, " "),
			Department: department,
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context the way EnsureValidToken does
func SetMockAuthContext(c *gin.Context, auth0ID, department, accessToken string) {
	c.Set("user_id", auth0ID)
	c.Set("access_token", accessToken)
	c.Set("validated_claims", MockValidatedClaims(auth0ID, department, nil))
}

// AuthAs authenticates every request as user, skipping token validation and the user lookup
func AuthAs(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, user.Auth0ID, user.Department, "test-token")
		middleware.SetCurrentUser(c, user)
		c.Next()
	}
}
