package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/services"
	"github.com/smartapp-edu/records-service/internal/utils"
)

type HandlerManager struct {
	accountHandler      *AccountHandler
	userHandler         *UserHandler
	markHandler         *MarkHandler
	importExportHandler *ImportExportHandler
}

func NewHandlerManager(serviceManager services.ServiceManager, policy auth.Policy, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		accountHandler:      NewAccountHandler(serviceManager.Account(), logger),
		userHandler:         NewUserHandler(serviceManager.Account(), policy, logger),
		markHandler:         NewMarkHandler(serviceManager.Mark(), policy, logger),
		importExportHandler: NewImportExportHandler(serviceManager.ImportExport(), policy, logger),
	}
}

// SetupRoutes sets up all API routes. Paths are the ones the browser client
// has always called; there is no version prefix.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "message": "SmartAPP API running"})
	})

	// Account routes, no capability required.
	router.POST("/signup", hm.accountHandler.Signup)
	router.POST("/login", hm.accountHandler.Login)
	router.POST("/forgot-password/request-otp", hm.accountHandler.RequestPasswordResetOtp)
	router.POST("/forgot-password/verify-otp-reset", hm.accountHandler.VerifyOtpAndResetPassword)

	// Teacher profile.
	router.GET("/teacher/:username", hm.userHandler.GetTeacherProfile)
	router.PUT("/teacher/:username", hm.userHandler.UpdateTeacherProfile)

	// Admin user management.
	router.GET("/users", hm.userHandler.ListUsers)
	router.PUT("/users/:username", hm.userHandler.UpdateUser)

	// Marks.
	marks := router.Group("/marks")
	{
		marks.POST("", hm.markHandler.CreateMark)
		marks.GET("", hm.markHandler.ListMarks)
		marks.PUT("/:id", hm.markHandler.UpdateMark)
		marks.DELETE("/:id", hm.markHandler.DeleteMark)
		marks.DELETE("", hm.markHandler.DeleteMarkByStudentAndCourse)

		marks.GET("/export", hm.importExportHandler.ExportCSV)
		marks.POST("/import", hm.importExportHandler.ImportCSV)
		marks.GET("/export.xlsx", hm.importExportHandler.ExportXLSX)
		marks.GET("/template.xlsx", hm.importExportHandler.TemplateXLSX)
		marks.POST("/import.xlsx", hm.importExportHandler.ImportXLSX)

		// Registered last: a student's own marks, or a teacher/admin
		// scoped view of one student.
		marks.GET("/:username", hm.markHandler.ListStudentMarks)
	}
}
