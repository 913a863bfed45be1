package models

import "time"

// Role is the capability level of a user. The external contract exposes it
// as the independent is_staff / is_superuser booleans.
type Role string

const (
	RoleMember    Role = "member"
	RoleStaff     Role = "staff"
	RoleSuperuser Role = "superuser"
)

// RoleFromFlags folds the external booleans into a single role.
// A superuser is always staff.
func RoleFromFlags(staff, superuser bool) Role {
	switch {
	case superuser:
		return RoleSuperuser
	case staff:
		return RoleStaff
	default:
		return RoleMember
	}
}

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleStaff, RoleSuperuser:
		return true
	}
	return false
}

func (r Role) IsStaff() bool     { return r == RoleStaff || r == RoleSuperuser }
func (r Role) IsSuperuser() bool { return r == RoleSuperuser }

// User represents a registered user. Password holds the bcrypt hash only.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      Role      `json:"-"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) IsStaff() bool     { return u.Role.IsStaff() }
func (u *User) IsSuperuser() bool { return u.Role.IsSuperuser() }

// Summary returns the public view of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// UserSummary is the representation returned by the user listing routes and
// embedded as a message sender.
type UserSummary struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       int64  `json:"id"`
}

// SuperuserResponse is returned after a superuser has been created.
type SuperuserResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	IsSuperuser bool   `json:"is_superuser"`
	IsStaff     bool   `json:"is_staff"`
}

// CreateUserRequest is the registration payload.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateSuperuserRequest is the superuser bootstrap payload. The flags are
// pointers so an explicit false can be told apart from an omitted field.
type CreateSuperuserRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	IsSuperuser *bool  `json:"is_superuser,omitempty"`
	IsStaff     *bool  `json:"is_staff,omitempty"`
}

// UserPatch holds the fields of a partial user update. Nil fields are left untouched.
// Password, when set, is already hashed.
type UserPatch struct {
	Email    *string
	Username *string
	Password *string
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Email == nil && p.Username == nil && p.Password == nil
}

// PatchUserRequest is the payload of PATCH /users/. The target is named by ID.
type PatchUserRequest struct {
	ID       *int64  `json:"id"`
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}
