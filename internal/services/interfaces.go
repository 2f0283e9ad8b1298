package services

import (
	"context"

	"github.com/smartapp-edu/records-service/internal/auth"
	"github.com/smartapp-edu/records-service/internal/models"
	"github.com/smartapp-edu/records-service/internal/validator"
)

// ===== REQUEST DTOs =====

// Request types live with their validate tags in the validator package.
type SignupRequest = validator.SignupRequest
type LoginRequest = validator.LoginRequest
type OtpRequest = validator.OtpRequest
type VerifyOtpResetRequest = validator.VerifyOtpResetRequest
type TeacherProfileUpdateRequest = validator.TeacherProfileUpdateRequest
type AdminUserUpdateRequest = validator.AdminUserUpdateRequest
type MarkCreateRequest = validator.MarkCreateRequest
type MarkUpdateRequest = validator.MarkUpdateRequest

// OtpResult reports the outcome of an OTP request. Message never reveals
// whether delivery actually succeeded beyond what the original client showed.
type OtpResult struct {
	Message string `json:"message"`
}

// ===== SERVICE INTERFACES =====

type AccountService interface {
	Signup(ctx context.Context, req *SignupRequest) (models.UserInfo, error)
	Login(ctx context.Context, req *LoginRequest) (models.UserRole, error)

	RequestPasswordResetOtp(ctx context.Context, req *OtpRequest) (OtpResult, error)
	VerifyOtpAndResetPassword(ctx context.Context, req *VerifyOtpResetRequest) error

	GetTeacherProfile(ctx context.Context, username string) (models.TeacherProfile, error)
	UpdateTeacherProfile(ctx context.Context, username string, req *TeacherProfileUpdateRequest) (models.TeacherProfile, error)

	ListUsers(ctx context.Context) ([]models.UserInfo, error)
	UpdateUserAsAdmin(ctx context.Context, username string, req *AdminUserUpdateRequest) (models.UserInfo, error)
}

type MarkService interface {
	Create(ctx context.Context, req *MarkCreateRequest, scope auth.Scope) (models.Mark, error)
	List(ctx context.Context, scope auth.Scope) ([]models.Mark, error)
	ListForStudent(ctx context.Context, username string, scope auth.Scope) ([]models.Mark, error)
	Update(ctx context.Context, id int, req *MarkUpdateRequest, scope auth.Scope) (models.Mark, error)
	Delete(ctx context.Context, id int, scope auth.Scope) (models.Mark, error)
	DeleteByStudentAndCourse(ctx context.Context, studentUsername, course string, scope auth.Scope) (models.Mark, error)
}

type ImportExportService interface {
	ExportCSV(ctx context.Context, scope auth.Scope) ([]byte, error)
	ImportCSV(ctx context.Context, text string, scope auth.Scope) (int, error)
	ExportXLSX(ctx context.Context, scope auth.Scope) ([]byte, error)
	ImportXLSX(ctx context.Context, data []byte, scope auth.Scope) (int, error)
	TemplateXLSX(ctx context.Context) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Account() AccountService
	Mark() MarkService
	ImportExport() ImportExportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
