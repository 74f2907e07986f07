package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "traveldesk/internal/errors"
	"traveldesk/internal/logger"
	"traveldesk/internal/middleware"
	"traveldesk/internal/models"
	"traveldesk/internal/services"
)

// Response is the standard envelope for every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// getActor extracts the authenticated user from the Gin context and pairs
// it with the request metadata the audit trail records.
func getActor(c *gin.Context) (services.Actor, error) {
	value, exists := c.Get(middleware.ActorKey)
	if !exists {
		return services.Actor{}, apperrors.ErrUnauthorized
	}

	user, ok := value.(*models.User)
	if !ok {
		return services.Actor{}, apperrors.ErrUnauthorized
	}

	return services.Actor{
		User:      user,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, nil
}

// parsePathID parses a uint path parameter.
func parsePathID(c *gin.Context, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return uint(id), nil
}

// bindJSON binds the request body and, on validation failure, writes a 422
// with field-level messages. Returns false when the request was rejected.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for query string parameters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// parseDate parses a YYYY-MM-DD date string.
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// respondSuccess writes a success envelope.
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondValidationError writes a 422 with per-field messages when the
// error is a validator error, or a generic 422 otherwise.
func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string]string, len(validationErrors))
		for _, fieldErr := range validationErrors {
			fields[toSnakeCase(fieldErr.Field())] = fieldMessage(fieldErr)
		}
		c.JSON(http.StatusUnprocessableEntity, Response{
			Success: false,
			Message: apperrors.ErrValidation.Message,
			Errors:  fields,
		})
		return
	}

	c.JSON(http.StatusUnprocessableEntity, Response{
		Success: false,
		Message: apperrors.ErrValidation.Message,
		Errors:  map[string]string{"body": err.Error()},
	})
}

// respondWithError writes the envelope for an error. AppErrors keep their
// status and message; anything else is logged and becomes a generic 500.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, Response{
			Success: false,
			Message: appErr.Message,
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, Response{
		Success: false,
		Message: apperrors.ErrInternalServer.Message,
	})
}

func fieldMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fieldErr.Param())
	case "max":
		return fmt.Sprintf("Must not exceed %s characters", fieldErr.Param())
	case "travel_status":
		return "Status must be either approved or cancelled"
	case "user_type":
		return "User type must be admin or basic"
	case "log_action":
		return "Action must be one of create, update, delete, status_change"
	default:
		return fmt.Sprintf("Failed validation on rule %q", fieldErr.Tag())
	}
}

func toSnakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
