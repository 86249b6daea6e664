package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/FaizGusion00/fazztrack-backend/logger"
	"github.com/FaizGusion00/fazztrack-backend/middleware"
	"github.com/FaizGusion00/fazztrack-backend/models"
	"github.com/FaizGusion00/fazztrack-backend/services"
)

// dateLayout is the wire format of calendar dates
const dateLayout = "2006-01-02"

func init() {
	// report json field names in validation details
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondMessage(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError renders a service error with the status code its kind maps to
func respondError(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		se = services.Unexpected("unexpected error", err)
	}

	status := http.StatusInternalServerError
	switch se.Kind {
	case services.KindValidation, services.KindPrecondition:
		status = http.StatusUnprocessableEntity
	case services.KindForbidden:
		status = http.StatusForbidden
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindConflict:
		status = http.StatusConflict
	}

	message := se.Message
	if se.Kind == services.KindUnexpected {
		logger.FromContext(c.Request.Context()).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "An unexpected error occurred"
	}

	body := gin.H{
		"code":    se.Code,
		"message": message,
	}
	if len(se.Details) > 0 {
		body["details"] = se.Details
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   body,
	})
}

// bindJSON binds the request body, rendering a validation error on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

// bindingError turns gin/validator binding failures into a ValidationError with field details
func bindingError(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		details := make([]services.FieldError, 0, len(ve))
		for _, fe := range ve {
			details = append(details, services.FieldError{
				Field:   fieldPath(fe.Namespace()),
				Message: fieldMessage(fe),
			})
		}
		return services.ValidationError("Invalid request data", details...)
	}
	return services.ValidationError("Invalid request data: " + err.Error())
}

var indexReplacer = strings.NewReplacer("[", ".", "]", "")

// fieldPath drops the struct name prefix: CreateOrderRequest.items[0].quantity -> items.0.quantity
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexReplacer.Replace(namespace)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date formatted " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " entries"
	case "gt", "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "email":
		return "must be a valid email address"
	}
	return "failed " + fe.Tag() + " validation"
}

// actor returns the authenticated user, rendering 401 when missing
func actor(c *gin.Context) (*models.User, bool) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}
	return user, true
}

// idParam parses a positive integer path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondMessage(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseDate parses a YYYY-MM-DD field; binding has already checked the format
func parseDate(value string) time.Time {
	t, _ := time.Parse(dateLayout, value)
	return t
}

func parseOptionalDate(value *string) *time.Time {
	if value == nil {
		return nil
	}
	t := parseDate(*value)
	return &t
}
