package task

import (
	"context"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/user"
)

var (
	// errors
	ErrNotFound           = core.NotFoundErr("task not found")
	ErrCompletionExists   = core.ConflictErr("completion already recorded")
	ErrCompletionNotFound = core.NotFoundErr("completion not found")
	ErrModeMismatch       = core.BadRequestErr("completion does not match the task's assignment mode")
)

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		QueryAllTasks(ctx context.Context) ([]Task, error)
		GetTaskByID(ctx context.Context, id int) (Task, error)
		UpdateTask(ctx context.Context, t Task) (Task, error)
		DeleteTasksByID(ctx context.Context, ids ...int) error

		CreateUserCompletion(ctx context.Context, userID, taskID int) error
		DeleteUserCompletion(ctx context.Context, userID, taskID int) error
		CreateGroupCompletion(ctx context.Context, groupID, taskID int) error
		DeleteGroupCompletion(ctx context.Context, groupID, taskID int) error

		// task-centric partitions
		FilterFinishedMembers(ctx context.Context, taskID int) ([]MemberStatus, error)
		FilterUnfinishedMembers(ctx context.Context, taskID int) ([]user.User, error)
		FilterFinishedGroups(ctx context.Context, taskID int, course string) ([]GroupStatus, error)
		FilterUnfinishedGroups(ctx context.Context, taskID int, course string) ([]group.Group, error)

		// member/group-centric partitions
		FilterUserFinishedTasks(ctx context.Context, userID int) ([]CompletedTask, error)
		FilterTasksFinishedByGroups(ctx context.Context, groupIDs []int) ([]CompletedTask, error)
		FilterUserUnfinishedTasks(ctx context.Context, userID int, groupIDs []int) ([]Task, error)
		FilterGroupUnfinishedTasks(ctx context.Context, groupID int) ([]Task, error)
	}

	// Rosters provides the membership data completions are inherited through.
	Rosters interface {
		MemberGroupIDs(ctx context.Context, userID int) ([]int, error)
		GetByID(ctx context.Context, id int) (group.Group, error)
	}

	Service struct {
		repo    Repository
		rosters Rosters
	}
)

func NewService(repo Repository, rosters Rosters) *Service {
	return &Service{repo: repo, rosters: rosters}
}

// CRUD

func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	t := Task{
		Course:      nt.Course,
		Title:       nt.Title,
		Description: nt.Description,
		Mode:        nt.Mode,
		DueAt:       nt.DueAt,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateTask(ctx, t)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Task, error) {
	return svc.repo.QueryAllTasks(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, ut UpdateTask) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, ut.TaskID)
	if err != nil {
		return Task{}, err
	}
	t.Title = ut.Title
	t.Description = ut.Description
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteTasksByID(ctx, ids...)
}

// ResolveForTask computes the finished/unfinished partition for a task.
// Individual tasks partition the entire member set; Group tasks partition the
// groups of the task's course, each hydrated with its current roster. A task
// holding an unknown mode value is not resolvable and reported as not found.
func (svc *Service) ResolveForTask(ctx context.Context, taskID int) (Status, error) {
	t, err := svc.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	switch t.Mode {
	case ModeIndividual:
		finished, err := svc.repo.FilterFinishedMembers(ctx, taskID)
		if err != nil {
			return nil, err
		}
		unfinished, err := svc.repo.FilterUnfinishedMembers(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if finished == nil {
			finished = []MemberStatus{}
		}
		if unfinished == nil {
			unfinished = []user.User{}
		}
		return &IndividualStatus{Task: t, FinishedMembers: finished, UnfinishedMembers: unfinished}, nil

	case ModeGroup:
		finished, err := svc.repo.FilterFinishedGroups(ctx, taskID, t.Course)
		if err != nil {
			return nil, err
		}
		unfinished, err := svc.repo.FilterUnfinishedGroups(ctx, taskID, t.Course)
		if err != nil {
			return nil, err
		}
		if finished == nil {
			finished = []GroupStatus{}
		}
		if unfinished == nil {
			unfinished = []group.Group{}
		}
		for i := range finished {
			if finished[i].Members == nil {
				finished[i].Members = []user.User{}
			}
		}
		for i := range unfinished {
			if unfinished[i].Members == nil {
				unfinished[i].Members = []user.User{}
			}
		}
		return &GroupModeStatus{Task: t, FinishedGroups: finished, UnfinishedGroups: unfinished}, nil
	}
	return nil, ErrNotFound
}

// ResolveForMember computes the finished/unfinished partition for a member.
// finished = direct completions ∪ completions inherited through any of the
// member's groups; when several groups finished the same task the earliest
// timestamp wins. Unfinished Individual tasks are system-wide; unfinished
// Group tasks are scoped to the member's groups' courses.
func (svc *Service) ResolveForMember(ctx context.Context, userID int) (MemberTasks, error) {
	gids, err := svc.rosters.MemberGroupIDs(ctx, userID)
	if err != nil {
		return MemberTasks{}, err
	}

	direct, err := svc.repo.FilterUserFinishedTasks(ctx, userID)
	if err != nil {
		return MemberTasks{}, err
	}
	var inherited []CompletedTask
	if len(gids) > 0 {
		if inherited, err = svc.repo.FilterTasksFinishedByGroups(ctx, gids); err != nil {
			return MemberTasks{}, err
		}
	}

	unfinished, err := svc.repo.FilterUserUnfinishedTasks(ctx, userID, gids)
	if err != nil {
		return MemberTasks{}, err
	}
	if unfinished == nil {
		unfinished = []Task{}
	}
	return MemberTasks{
		MemberID:   userID,
		Finished:   mergeCompletions(direct, inherited),
		Unfinished: unfinished,
	}, nil
}

// ResolveForGroup computes the finished/unfinished partition of the Group
// tasks in the group's course.
func (svc *Service) ResolveForGroup(ctx context.Context, groupID int) (GroupTasks, error) {
	if _, err := svc.rosters.GetByID(ctx, groupID); err != nil {
		return GroupTasks{}, err
	}

	finished, err := svc.repo.FilterTasksFinishedByGroups(ctx, []int{groupID})
	if err != nil {
		return GroupTasks{}, err
	}
	unfinished, err := svc.repo.FilterGroupUnfinishedTasks(ctx, groupID)
	if err != nil {
		return GroupTasks{}, err
	}
	if finished == nil {
		finished = []CompletedTask{}
	}
	if unfinished == nil {
		unfinished = []Task{}
	}
	return GroupTasks{GroupID: groupID, Finished: finished, Unfinished: unfinished}, nil
}

// Write paths. A completion write is only valid for the mode matching the
// actor: direct completions on Individual tasks, group completions on Group
// tasks.

func (svc *Service) MarkMemberFinished(ctx context.Context, userID, taskID int) error {
	t, err := svc.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Mode != ModeIndividual {
		return ErrModeMismatch
	}
	return svc.repo.CreateUserCompletion(ctx, userID, taskID)
}

func (svc *Service) MarkMemberUnfinished(ctx context.Context, userID, taskID int) error {
	t, err := svc.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Mode != ModeIndividual {
		return ErrModeMismatch
	}
	return svc.repo.DeleteUserCompletion(ctx, userID, taskID)
}

func (svc *Service) MarkGroupFinished(ctx context.Context, groupID, taskID int) error {
	t, err := svc.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Mode != ModeGroup {
		return ErrModeMismatch
	}
	return svc.repo.CreateGroupCompletion(ctx, groupID, taskID)
}

func (svc *Service) MarkGroupUnfinished(ctx context.Context, groupID, taskID int) error {
	t, err := svc.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if t.Mode != ModeGroup {
		return ErrModeMismatch
	}
	return svc.repo.DeleteGroupCompletion(ctx, groupID, taskID)
}

// mergeCompletions unions direct and inherited completions; inherited entries
// are deduped by task, keeping the earliest timestamp.
func mergeCompletions(direct, inherited []CompletedTask) []CompletedTask {
	merged := make([]CompletedTask, 0, len(direct)+len(inherited))
	merged = append(merged, direct...)

	earliest := make(map[int]int, len(inherited)) // task id -> index in merged
	for _, ct := range inherited {
		if i, ok := earliest[ct.ID]; ok {
			if ct.FinishedAt.Before(merged[i].FinishedAt) {
				merged[i] = ct
			}
			continue
		}
		merged = append(merged, ct)
		earliest[ct.ID] = len(merged) - 1
	}
	return merged
}
