package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/utils"
	"github.com/smartapp-edu/records-service/internal/validator"
)

// ErrorResponse carries the single human-readable message every failed
// request returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.FromContext(c, h.logger).Debug(msg, "path", c.Request.URL.Path)
}

func (h BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.FromContext(c, h.logger).Error(msg, "error", err, "path", c.Request.URL.Path)
}

// scopeFromQuery reads the caller's asserted role and teacher identity. There
// is no verified session behind these parameters.
func scopeFromQuery(c *gin.Context) auth.Scope {
	return auth.Scope{
		Role:    models.UserRole(c.Query("role")),
		Teacher: c.Query("teacher"),
	}
}

// handleServiceError maps service errors to HTTP status classes.
func (h BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: verrs.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrTeacherNotFound),
		errors.Is(err, services.ErrStudentNotFound),
		errors.Is(err, services.ErrMarkNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrUserExists),
		errors.Is(err, services.ErrRegNumberExists),
		errors.Is(err, services.ErrMarkExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrOtpNotRequested),
		errors.Is(err, services.ErrOtpExpired),
		errors.Is(err, services.ErrOtpInvalid),
		errors.Is(err, services.ErrCsvInvalid),
		errors.Is(err, services.ErrCsvEmpty),
		errors.Is(err, services.ErrCsvMissingColumns),
		errors.Is(err, services.ErrSheetEmpty),
		errors.Is(err, services.ErrSheetInvalid),
		errors.Is(err, services.ErrSheetMissingCols):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.LogError(c, err, "unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
