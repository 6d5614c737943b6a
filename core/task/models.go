package task

import (
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/user"
)

// Mode is a task's assignment mode: whether its completion unit is an
// individual member or a group. Immutable after creation.
type Mode int

const (
	ModeIndividual Mode = 0
	ModeGroup      Mode = 1
)

func (m Mode) Valid() bool {
	return m == ModeIndividual || m == ModeGroup
}

type Task struct {
	ID          int       `json:"id"`
	Course      string    `json:"course"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Mode        Mode      `json:"mode"`
	DueAt       time.Time `json:"due_at"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Course      string    `json:"course" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Mode        Mode      `json:"mode" validate:"taskmode"`
	DueAt       time.Time `json:"due_at" validate:"required"`
}

func (nt *NewTask) Validate() error {
	nt.Course = core.CleanString(nt.Course)
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return core.Validate.Struct(nt)
}

// UpdateTask defines what may be modified on an existing Task.
// Mode is immutable: re-typing a task would orphan completion records.
type UpdateTask struct {
	TaskID      int    `json:"task_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}

func (ut *UpdateTask) Validate() error {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
	return core.Validate.Struct(ut)
}

// CompletedTask is a task together with when its completion was recorded.
type CompletedTask struct {
	Task
	FinishedAt time.Time `json:"finished_at"` // UTC
}

// MemberTasks partitions every task applicable to a member into finished
// (directly or inherited through a group) and unfinished.
type MemberTasks struct {
	MemberID   int             `json:"member_id"`
	Finished   []CompletedTask `json:"finished_tasks"`
	Unfinished []Task          `json:"unfinished_tasks"`
}

// GroupTasks partitions a group's course tasks into finished and unfinished.
type GroupTasks struct {
	GroupID    int             `json:"group_id"`
	Finished   []CompletedTask `json:"finished_tasks"`
	Unfinished []Task          `json:"unfinished_tasks"`
}

// MemberStatus is a member together with when they finished a given task.
type MemberStatus struct {
	user.User
	FinishedAt time.Time `json:"finished_at"` // UTC
}

// GroupStatus is a hydrated group together with when it finished a given task.
type GroupStatus struct {
	group.Group
	FinishedAt time.Time `json:"finished_at"` // UTC
}

// Status is the typed view returned by ResolveForTask; the concrete type
// depends on the task's assignment mode.
type Status interface {
	taskStatus()
}

// IndividualStatus partitions the entire member set for an Individual task.
type IndividualStatus struct {
	Task
	FinishedMembers   []MemberStatus `json:"finished_members"`
	UnfinishedMembers []user.User    `json:"unfinished_members"`
}

// GroupModeStatus partitions the groups of the task's course for a Group task.
type GroupModeStatus struct {
	Task
	FinishedGroups   []GroupStatus `json:"finished_groups"`
	UnfinishedGroups []group.Group `json:"unfinished_groups"`
}

func (IndividualStatus) taskStatus() {}
func (GroupModeStatus) taskStatus()  {}
