package user

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/darasa/backend/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleTeacher    = "teacher"
	RoleParent     = "parent"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// Capabilities. PermWildcard grants everything.
const (
	PermWildcard = "*"

	PermManageUsers      = "manage_users"
	PermManageCourses    = "manage_courses"
	PermManageGrades     = "manage_grades"
	PermManageAttendance = "manage_attendance"
	PermManageFees       = "manage_fees"
	PermViewCourses      = "view_courses"
	PermViewGrades       = "view_grades"
	PermViewChildren     = "view_children"
	PermViewReports      = "view_reports"
	PermSubmitWork       = "submit_assignments"
)

var (
	AllRoles = []string{RoleStudent, RoleTeacher, RoleParent, RoleAdmin, RoleSuperAdmin}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Parent", Value: RoleParent},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Super Admin", Value: RoleSuperAdmin},
	}

	defaultPermissions = map[string][]string{
		RoleStudent:    {PermViewCourses, PermViewGrades, PermSubmitWork},
		RoleTeacher:    {PermViewCourses, PermManageCourses, PermManageGrades, PermManageAttendance},
		RoleParent:     {PermViewChildren, PermViewGrades, PermViewCourses},
		RoleAdmin:      {PermManageUsers, PermManageCourses, PermManageFees, PermViewReports},
		RoleSuperAdmin: {PermWildcard},
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// DefaultPermissions returns the capability set granted to a role when a user
// is created without an explicit permission list.
func DefaultPermissions(role string) []string {
	perms := defaultPermissions[role]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	IsActive    bool      `json:"is_active"`

	// role-specific profile fields
	Grade      string `json:"grade,omitempty"`      // students
	Department string `json:"department,omitempty"` // teachers & admins

	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// HasPermission reports whether the user holds the exact capability or the
// wildcard. This is the single permission gate in the system.
func (u *User) HasPermission(capability string) bool {
	for _, p := range u.Permissions {
		if p == PermWildcard || p == capability {
			return true
		}
	}
	return false
}

func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u *User) IsParent() bool  { return u.Role == RoleParent }

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name        string   `json:"name" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	Phone       string   `json:"phone"`
	Role        string   `json:"role" validate:"required,role"`
	Permissions []string `json:"permissions"`
	Grade       string   `json:"grade"`
	Department  string   `json:"department"`
	Password    string   `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(nu.Email)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name        string   `json:"name"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Phone       string   `json:"phone"`
	Role        string   `json:"role" validate:"omitempty,role"`
	Permissions []string `json:"permissions"`
	Grade       string   `json:"grade"`
	Department  string   `json:"department"`
	IsActive    *bool    `json:"is_active"`
	Password    string   `json:"password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	if name := core.CleanString(uu.Name); name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}

	if email := core.CleanString(uu.Email, true /* lower */); email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	if err := validate.Struct(uu); err != nil {
		return err
	}
	return svc.CheckEmailUniqueness(uu.Email, origUsr)
}

// QueryFilter applies AND semantics on its set fields; zero-value fields are
// ignored. Search does a case-insensitive substring match on one of
// User.Name, User.Email or User.Phone.
type QueryFilter struct {
	Search      string    `query:"search"`
	Role        string    `query:"role"`
	IsActive    *bool     `query:"is_active"`
	Grade       string    `query:"grade"`
	Department  string    `query:"department"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.IsActive == nil &&
		qf.Grade == "" && qf.Department == "" && qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}

// Match reports whether a user satisfies every set filter field.
func (qf *QueryFilter) Match(usr User) bool {
	if qf.Role != "" && usr.Role != qf.Role {
		return false
	}
	if qf.IsActive != nil && usr.IsActive != *qf.IsActive {
		return false
	}
	if qf.Grade != "" && usr.Grade != qf.Grade {
		return false
	}
	if qf.Department != "" && usr.Department != qf.Department {
		return false
	}
	if !qf.CreatedFrom.IsZero() && usr.CreatedAt.Before(qf.CreatedFrom) {
		return false
	}
	if !qf.CreatedTo.IsZero() && usr.CreatedAt.After(qf.CreatedTo) {
		return false
	}
	if qf.Search != "" {
		term := strings.ToLower(qf.Search)
		if !(strings.Contains(strings.ToLower(usr.Name), term) ||
			strings.Contains(strings.ToLower(usr.Email), term) ||
			strings.Contains(strings.ToLower(usr.Phone), term)) {
			return false
		}
	}
	return true
}

// Stats is a derived aggregate over the whole directory, recomputed from
// scratch on every call; it is never incrementally maintained.
type Stats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Inactive     int            `json:"inactive"`
	ByRole       map[string]int `json:"by_role"`
	ByGrade      map[string]int `json:"by_grade"`      // students only
	ByDepartment map[string]int `json:"by_department"` // teachers & admins only
}

// BatchResult reports the outcome of one id within a batch operation. Batch
// operations are best-effort: a failure partway through leaves earlier ids
// mutated.
type BatchResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

func (br BatchResult) OK() bool { return br.Error == "" }
