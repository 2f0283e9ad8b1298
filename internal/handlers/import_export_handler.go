package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ImportExportHandler struct {
	BaseHandler
	service services.ImportExportService
	policy  auth.Policy
}

func NewImportExportHandler(service services.ImportExportService, policy auth.Policy, logger utils.Logger) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		policy:      policy,
	}
}

func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	h.LogRequest(c, "export marks CSV")

	scope := scopeFromQuery(c)
	if err := h.policy.CanManageMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.service.ExportCSV(c.Request.Context(), scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=marks.csv")
	c.Data(http.StatusOK, "text/csv", data)
}

func (h *ImportExportHandler) ImportCSV(c *gin.Context) {
	h.LogRequest(c, "import marks CSV")

	scope := scopeFromQuery(c)
	if err := h.policy.CanManageMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing CSV body"})
		return
	}

	imported, err := h.service.ImportCSV(c.Request.Context(), string(body), scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": imported})
}

func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	h.LogRequest(c, "export marks spreadsheet")

	scope := scopeFromQuery(c)
	if err := h.policy.CanManageMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.service.ExportXLSX(c.Request.Context(), scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=marks.xlsx")
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ImportExportHandler) TemplateXLSX(c *gin.Context) {
	h.LogRequest(c, "download marks template")

	data, err := h.service.TemplateXLSX(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=marks_template.xlsx")
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *ImportExportHandler) ImportXLSX(c *gin.Context) {
	h.LogRequest(c, "import marks spreadsheet")

	scope := scopeFromQuery(c)
	if err := h.policy.CanManageMarks(scope); err != nil {
		h.handleServiceError(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing Excel body"})
		return
	}

	imported, err := h.service.ImportXLSX(c.Request.Context(), body, scope)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": imported})
}
