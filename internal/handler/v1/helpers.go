package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/clinsys/examflow/internal/domain/catalog"
	"github.com/clinsys/examflow/internal/domain/checkuprequest"
	"github.com/clinsys/examflow/internal/domain/examrequest"
	"github.com/clinsys/examflow/internal/service"
	"github.com/clinsys/examflow/internal/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// respondServiceError maps the four workflow error kinds (and the auth
// errors) onto HTTP statuses. A denied or invalid transition always reaches
// the client as an explicit error, never as a silent no-op.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, examrequest.ErrNotFound),
		errors.Is(err, checkuprequest.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"})

	case errors.Is(err, workflow.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "PERMISSION_DENIED"})

	case errors.Is(err, examrequest.ErrStatusConflict),
		errors.Is(err, checkuprequest.ErrStatusConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "CONFLICT"})

	case errors.Is(err, examrequest.ErrInvalidStatus),
		errors.Is(err, examrequest.ErrInvalidPaymentType),
		errors.Is(err, examrequest.ErrInsuranceRequired),
		errors.Is(err, examrequest.ErrInsuranceNotAllowed),
		errors.Is(err, examrequest.ErrConductNotAllowed),
		errors.Is(err, examrequest.ErrInvalidConduct),
		errors.Is(err, examrequest.ErrPartnerRequired),
		errors.Is(err, checkuprequest.ErrInvalidStatus),
		errors.Is(err, checkuprequest.ErrUnitRequired),
		errors.Is(err, checkuprequest.ErrEmptyExamList),
		errors.Is(err, catalog.ErrPartnerNotFound),
		errors.Is(err, catalog.ErrDoctorNotFound),
		errors.Is(err, catalog.ErrInsuranceNotFound),
		errors.Is(err, catalog.ErrBatteryNotFound),
		errors.Is(err, catalog.ErrUnitNotFound),
		errors.Is(err, workflow.ErrUnknownEntityKind):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_PAYLOAD"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountInactive):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "account is inactive"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}
	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}

func parseQueryUUID(c *gin.Context, key string) *uuid.UUID {
	if raw := c.Query(key); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return &id
		}
	}
	return nil
}

// parseQueryDate accepts a plain date; list filters work on whole days.
func parseQueryDate(c *gin.Context, key string) *time.Time {
	if raw := c.Query(key); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			return &t
		}
	}
	return nil
}
