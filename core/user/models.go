package user

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kazi/core"
)

// Role is the closed set of privilege levels a member can hold.
type Role string

const (
	RoleMember    Role = "member"
	RoleChair     Role = "chair"
	RoleSecretary Role = "secretary"
)

var Roles = []RoleChoice{
	{Name: "Member", Value: RoleMember},
	{Name: "Chair", Value: RoleChair},
	{Name: "Secretary", Value: RoleSecretary},
}

type RoleChoice struct {
	Name  string `json:"name"`
	Value Role   `json:"value"`
}

func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleChair, RoleSecretary:
		return true
	}
	return false
}

// HasElevatedPermission reports whether a role may create, update or delete
// administrative entities (members, groups, courses, tasks).
func HasElevatedPermission(r Role) bool {
	switch r {
	case RoleChair, RoleSecretary:
		return true
	}
	return false
}

type User struct {
	ID           int         `json:"id"`
	Username     string      `json:"username"`
	Name         string      `json:"name"`
	Email        null.String `json:"email"`
	Role         Role        `json:"role"`
	Avatar       null.String `json:"avatar"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
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

func (u *User) IsElevated() bool {
	return HasElevatedPermission(u.Role)
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string      `json:"username" validate:"required,min=3,alphanum_"`
	Name            string      `json:"name" validate:"required"`
	Email           string      `json:"email" validate:"omitempty,email"`
	Role            Role        `json:"role" validate:"required,role"`
	Avatar          null.String `json:"avatar"`
	Password        string      `json:"password" validate:"required"`
	PasswordConfirm string      `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate(svc *Service) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := core.Validate.Struct(nu); err != nil {
		return err
	}
	return svc.checkUniqueness(nu.Username)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Role can only be changed by an elevated caller; the handler enforces that.
type UpdateUser struct {
	Name   string      `json:"name"`
	Role   Role        `json:"role" validate:"omitempty,role"`
	Avatar null.String `json:"avatar"`
}

func (uu *UpdateUser) Validate(origUsr User) error {
	name := core.CleanString(uu.Name)
	if name != "" {
		uu.Name = name
	} else {
		uu.Name = origUsr.Name
	}
	if uu.Role == "" {
		uu.Role = origUsr.Role
	}
	if !uu.Avatar.Valid {
		uu.Avatar = origUsr.Avatar
	}
	return core.Validate.Struct(uu)
}
