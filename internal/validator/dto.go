package validator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/smartapp-edu/records-service/internal/models"
)

// Number accepts a JSON number or a numeric string. The browser client posts
// form input values verbatim, so "95" and 95 must both decode.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return fmt.Errorf("empty numeric value")
		}
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric value %q", str)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) Float64() float64 { return float64(n) }

// SignupRequest creates an account. RegNumber and Phone are optional; teacher
// accounts additionally require module details (business rule).
type SignupRequest struct {
	Username    string          `json:"username" validate:"required,max=100"`
	RegNumber   string          `json:"regNumber" validate:"omitempty,max=50"`
	Phone       string          `json:"phone" validate:"omitempty,phone_number"`
	Role        models.UserRole `json:"role" validate:"required,user_role"`
	Password    string          `json:"password" validate:"required,max=200"`
	ModuleTitle string          `json:"moduleTitle" validate:"omitempty,max=200"`
	ModuleCode  string          `json:"moduleCode" validate:"omitempty,max=50"`
}

type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	RegNumber string `json:"regNumber"`
	Password  string `json:"password" validate:"required"`
}

type OtpRequest struct {
	Username  string `json:"username" validate:"required"`
	RegNumber string `json:"regNumber" validate:"required"`
}

type VerifyOtpResetRequest struct {
	Username    string `json:"username" validate:"required"`
	RegNumber   string `json:"regNumber" validate:"required"`
	Otp         string `json:"otp" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,max=200"`
}

type TeacherProfileUpdateRequest struct {
	ModuleTitle string `json:"moduleTitle" validate:"required,max=200"`
	ModuleCode  string `json:"moduleCode" validate:"required,max=50"`
}

// AdminUserUpdateRequest applies a partial update to any account. Module
// fields use pointers so an absent field can be told apart from a blank one.
type AdminUserUpdateRequest struct {
	NewRole     models.UserRole `json:"newRole" validate:"omitempty,user_role"`
	Password    string          `json:"password" validate:"omitempty,max=200"`
	ModuleTitle *string         `json:"moduleTitle" validate:"omitempty,max=200"`
	ModuleCode  *string         `json:"moduleCode" validate:"omitempty,max=50"`
}

// MarkCreateRequest records a mark. The student is identified by registration
// number when StudentRegNumber is set, by username otherwise.
type MarkCreateRequest struct {
	StudentRegNumber string  `json:"studentRegNumber"`
	StudentUsername  string  `json:"studentUsername"`
	Course           string  `json:"course" validate:"required,max=200"`
	Score            *Number `json:"score" validate:"required"`
	MaxScore         *Number `json:"maxScore" validate:"required"`
	CreatedBy        string  `json:"createdBy"`
}

type MarkUpdateRequest struct {
	StudentUsername string  `json:"studentUsername" validate:"required,max=100"`
	Course          string  `json:"course" validate:"required,max=200"`
	Score           *Number `json:"score" validate:"required"`
	MaxScore        *Number `json:"maxScore" validate:"required"`
}
