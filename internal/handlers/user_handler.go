package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.AccountService
	policy  auth.Policy
}

func NewUserHandler(service services.AccountService, policy auth.Policy, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		policy:      policy,
	}
}

func (h *UserHandler) GetTeacherProfile(c *gin.Context) {
	h.LogRequest(c, "get teacher profile")

	profile, err := h.service.GetTeacherProfile(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateTeacherProfile(c *gin.Context) {
	h.LogRequest(c, "update teacher profile")

	var req services.TeacherProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	profile, err := h.service.UpdateTeacherProfile(c.Request.Context(), c.Param("username"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": profile})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "list users")

	if err := h.policy.CanManageUsers(scopeFromQuery(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	h.LogRequest(c, "admin user update")

	if err := h.policy.CanManageUsers(scopeFromQuery(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	var req services.AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	user, err := h.service.UpdateUserAsAdmin(c.Request.Context(), c.Param("username"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": user})
}
