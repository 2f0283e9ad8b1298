package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// User is an account record. The username is the primary key and is never
// reused once created. Module fields are only populated for teachers.
type User struct {
	Username    string   `json:"username"`
	RegNumber   string   `json:"regNumber,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Role        UserRole `json:"role"`
	Password    string   `json:"password"`
	ModuleTitle string   `json:"moduleTitle,omitempty"`
	ModuleCode  string   `json:"moduleCode,omitempty"`
}

// UserInfo is the listing projection of a User. It must never carry the
// password, regardless of who is asking.
type UserInfo struct {
	Username    string   `json:"username"`
	RegNumber   string   `json:"regNumber"`
	Phone       string   `json:"phone"`
	Role        UserRole `json:"role"`
	ModuleTitle string   `json:"moduleTitle"`
	ModuleCode  string   `json:"moduleCode"`
}

// Info returns the password-free projection of u.
func (u User) Info() UserInfo {
	return UserInfo{
		Username:    u.Username,
		RegNumber:   u.RegNumber,
		Phone:       u.Phone,
		Role:        u.Role,
		ModuleTitle: u.ModuleTitle,
		ModuleCode:  u.ModuleCode,
	}
}

// TeacherProfile is the module assignment view of a teacher account.
type TeacherProfile struct {
	Username    string `json:"username"`
	ModuleTitle string `json:"moduleTitle"`
	ModuleCode  string `json:"moduleCode"`
}
