package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/smartapp-edu/records-service/internal/models"
)

// ValidationError represents a single field failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// An E.164-like international number: optional +, no leading zero, 8-15
// digits total.
var phoneRx = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)

// BusinessValidator handles struct validation plus the cross-field rules the
// struct tags cannot express.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

func (bv *BusinessValidator) registerBusinessRules() {
	_ = bv.validate.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return models.ValidRole(models.UserRole(fl.Field().String()))
	})
	_ = bv.validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return phoneRx.MatchString(fl.Field().String())
	})
}

// Validate validates any struct against its tags.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs ValidationErrors
	for _, fe := range err.(validator.ValidationErrors) {
		errs = append(errs, ValidationError{
			Field:   fe.Field(),
			Message: bv.getErrorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errs
}

// ValidateSignup validates account creation, including the teacher module
// requirement.
func (bv *BusinessValidator) ValidateSignup(req *SignupRequest) ValidationErrors {
	errs := bv.Validate(req)

	if req.Role == models.RoleTeacher {
		if req.ModuleTitle == "" {
			errs = append(errs, ValidationError{Field: "ModuleTitle", Message: "is required for teachers", Rule: "required"})
		}
		if req.ModuleCode == "" {
			errs = append(errs, ValidationError{Field: "ModuleCode", Message: "is required for teachers", Rule: "required"})
		}
	}
	return errs
}

// ValidateMarkCreate validates mark creation, requiring one of the two
// student identifiers.
func (bv *BusinessValidator) ValidateMarkCreate(req *MarkCreateRequest) ValidationErrors {
	errs := bv.Validate(req)

	if req.StudentRegNumber == "" && req.StudentUsername == "" {
		errs = append(errs, ValidationError{Field: "StudentRegNumber", Message: "either studentRegNumber or studentUsername is required", Rule: "required"})
	}
	return errs
}

func (bv *BusinessValidator) getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must be numeric"
	case "user_role":
		return "must be one of student, teacher, admin"
	case "phone_number":
		return "must be a valid international phone number"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
