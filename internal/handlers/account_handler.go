package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/utils"
)

type AccountHandler struct {
	BaseHandler
	service services.AccountService
}

func NewAccountHandler(service services.AccountService, logger utils.Logger) *AccountHandler {
	return &AccountHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

func (h *AccountHandler) Signup(c *gin.Context) {
	h.LogRequest(c, "signup")

	var req services.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	user, err := h.service.Signup(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}

func (h *AccountHandler) Login(c *gin.Context) {
	h.LogRequest(c, "login")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	role, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "role": role})
}

func (h *AccountHandler) RequestPasswordResetOtp(c *gin.Context) {
	h.LogRequest(c, "password reset OTP request")

	var req services.OtpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	result, err := h.service.RequestPasswordResetOtp(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": result.Message})
}

func (h *AccountHandler) VerifyOtpAndResetPassword(c *gin.Context) {
	h.LogRequest(c, "password reset OTP verification")

	var req services.VerifyOtpResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	if err := h.service.VerifyOtpAndResetPassword(c.Request.Context(), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
