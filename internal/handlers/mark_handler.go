package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/utils"
)

type MarkHandler struct {
	BaseHandler
	service services.MarkService
	policy  auth.Policy
}

func NewMarkHandler(service services.MarkService, policy auth.Policy, logger utils.Logger) *MarkHandler {
	return &MarkHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		policy:      policy,
	}
}

func (h *MarkHandler) CreateMark(c *gin.Context) {
	h.LogRequest(c, "create mark")

	scope := scopeFromQuery(c)
	if err := h.policy.CanManageMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	var req services.MarkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	mark, err := h.service.Create(c.Request.Context(), &req, scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mark": mark})
}

func (h *MarkHandler) ListMarks(c *gin.Context) {
	h.LogRequest(c, "list marks")

	scope := scopeFromQuery(c)
	if err := h.policy.CanManageMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	marks, err := h.service.List(c.Request.Context(), scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, marks)
}

func (h *MarkHandler) ListStudentMarks(c *gin.Context) {
	h.LogRequest(c, "list student marks")

	scope := scopeFromQuery(c)
	if err := h.policy.CanViewStudentMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	marks, err := h.service.ListForStudent(c.Request.Context(), c.Param("username"), scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, marks)
}

func (h *MarkHandler) UpdateMark(c *gin.Context) {
	h.LogRequest(c, "update mark")

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	var req services.MarkUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return
	}

	mark, err := h.service.Update(c.Request.Context(), id, &req, scopeFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mark": mark})
}

func (h *MarkHandler) DeleteMark(c *gin.Context) {
	h.LogRequest(c, "delete mark")

	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}

	mark, err := h.service.Delete(c.Request.Context(), id, scopeFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mark": mark})
}

func (h *MarkHandler) DeleteMarkByStudentAndCourse(c *gin.Context) {
	h.LogRequest(c, "delete mark by student and course")

	studentUsername := c.Query("studentUsername")
	course := c.Query("course")
	if studentUsername == "" || course == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing studentUsername or course"})
		return
	}

	mark, err := h.service.DeleteByStudentAndCourse(c.Request.Context(), studentUsername, course, scopeFromQuery(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "mark": mark})
}

func (h *MarkHandler) parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}
