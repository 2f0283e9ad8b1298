package services

import "errors"

// Sentinel errors for the handler status mapping. Each maps to one status
// class; the login failure deliberately never says which part was wrong.
var (
	ErrUserExists      = errors.New("username already exists")
	ErrRegNumberExists = errors.New("registration number already exists")

	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrUserNotFound    = errors.New("user not found")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrStudentNotFound = errors.New("student registration number not found")
	ErrMarkNotFound    = errors.New("mark not found")

	ErrMarkExists = errors.New("student already has marks for this course")

	ErrOtpNotRequested = errors.New("OTP not requested")
	ErrOtpExpired      = errors.New("OTP expired")
	ErrOtpInvalid      = errors.New("invalid OTP")

	ErrCsvInvalid        = errors.New("invalid CSV")
	ErrCsvEmpty          = errors.New("empty CSV")
	ErrCsvMissingColumns = errors.New("CSV must include studentUsername, course, score columns")
	ErrSheetEmpty        = errors.New("empty sheet")
	ErrSheetInvalid      = errors.New("invalid Excel file")
	ErrSheetMissingCols  = errors.New("missing required columns")
)
