package group

import (
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

// Group belongs to exactly one course; Number is unique within that course,
// allocated sequentially from 1 and never reused.
type Group struct {
	ID        int         `json:"id"`
	Course    string      `json:"course"`
	Number    int         `json:"number"`
	Members   []user.User `json:"members"`
	CreatedAt time.Time   `json:"created_at"` // UTC
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Course string `json:"course" validate:"required"`
}

func (ng *NewGroup) Validate() error {
	ng.Course = core.CleanString(ng.Course)
	return core.Validate.Struct(ng)
}

// AddMembers is a bulk membership request; it succeeds or fails as one unit.
type AddMembers struct {
	Users []int `json:"users" validate:"required,min=1,dive,gt=0"`
}

func (am *AddMembers) Validate() error {
	return core.Validate.Struct(am)
}

type RemoveMember struct {
	UserID int `json:"user_id" validate:"required"`
}

func (rm *RemoveMember) Validate() error {
	return core.Validate.Struct(rm)
}
