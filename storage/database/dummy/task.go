package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

var taskPKCount int

type taskRepository struct {
	db *DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	taskPKCount++
	t.ID = taskPKCount
	repo.db.task.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) QueryAllTasks(ctx context.Context) ([]task.Task, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()

	tasks := make([]task.Task, 0, len(repo.db.task.table))
	for _, t := range repo.db.task.table {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id int) (task.Task, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()

	if t, ok := repo.db.task.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	origTask, ok := repo.db.task.table[t.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	origTask.Title = t.Title
	origTask.Description = t.Description

	repo.db.task.table[t.ID] = origTask
	return *origTask, nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...int) error {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	for _, id := range ids {
		delete(repo.db.task.table, id)
		for key := range repo.db.task.userDone {
			if key.taskID == id {
				delete(repo.db.task.userDone, key)
			}
		}
		for key := range repo.db.task.groupDone {
			if key.taskID == id {
				delete(repo.db.task.groupDone, key)
			}
		}
	}
	return nil
}

func (repo *taskRepository) CreateUserCompletion(ctx context.Context, userID, taskID int) error {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	key := completionKey{ownerID: userID, taskID: taskID}
	if _, ok := repo.db.task.userDone[key]; ok {
		return task.ErrCompletionExists
	}
	repo.db.task.userDone[key] = time.Now().UTC()
	return nil
}

func (repo *taskRepository) DeleteUserCompletion(ctx context.Context, userID, taskID int) error {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	key := completionKey{ownerID: userID, taskID: taskID}
	if _, ok := repo.db.task.userDone[key]; !ok {
		return task.ErrCompletionNotFound
	}
	delete(repo.db.task.userDone, key)
	return nil
}

func (repo *taskRepository) CreateGroupCompletion(ctx context.Context, groupID, taskID int) error {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	key := completionKey{ownerID: groupID, taskID: taskID}
	if _, ok := repo.db.task.groupDone[key]; ok {
		return task.ErrCompletionExists
	}
	repo.db.task.groupDone[key] = time.Now().UTC()
	return nil
}

func (repo *taskRepository) DeleteGroupCompletion(ctx context.Context, groupID, taskID int) error {
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	key := completionKey{ownerID: groupID, taskID: taskID}
	if _, ok := repo.db.task.groupDone[key]; !ok {
		return task.ErrCompletionNotFound
	}
	delete(repo.db.task.groupDone, key)
	return nil
}

func (repo *taskRepository) FilterFinishedMembers(ctx context.Context, taskID int) ([]task.MemberStatus, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var finished []task.MemberStatus
	for _, usr := range repo.usersByID() {
		if at, ok := repo.db.task.userDone[completionKey{ownerID: usr.ID, taskID: taskID}]; ok {
			finished = append(finished, task.MemberStatus{User: usr, FinishedAt: at})
		}
	}
	return finished, nil
}

func (repo *taskRepository) FilterUnfinishedMembers(ctx context.Context, taskID int) ([]user.User, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var unfinished []user.User
	for _, usr := range repo.usersByID() {
		if _, ok := repo.db.task.userDone[completionKey{ownerID: usr.ID, taskID: taskID}]; !ok {
			unfinished = append(unfinished, usr)
		}
	}
	return unfinished, nil
}

func (repo *taskRepository) FilterFinishedGroups(ctx context.Context, taskID int, course string) ([]task.GroupStatus, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var finished []task.GroupStatus
	for _, grp := range repo.groupsByCourse(course) {
		if at, ok := repo.db.task.groupDone[completionKey{ownerID: grp.ID, taskID: taskID}]; ok {
			finished = append(finished, task.GroupStatus{Group: grp, FinishedAt: at})
		}
	}
	return finished, nil
}

func (repo *taskRepository) FilterUnfinishedGroups(ctx context.Context, taskID int, course string) ([]group.Group, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	var unfinished []group.Group
	for _, grp := range repo.groupsByCourse(course) {
		if _, ok := repo.db.task.groupDone[completionKey{ownerID: grp.ID, taskID: taskID}]; !ok {
			unfinished = append(unfinished, grp)
		}
	}
	return unfinished, nil
}

func (repo *taskRepository) FilterUserFinishedTasks(ctx context.Context, userID int) ([]task.CompletedTask, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()

	var finished []task.CompletedTask
	for _, t := range repo.tasksByID() {
		if at, ok := repo.db.task.userDone[completionKey{ownerID: userID, taskID: t.ID}]; ok {
			finished = append(finished, task.CompletedTask{Task: t, FinishedAt: at})
		}
	}
	return finished, nil
}

func (repo *taskRepository) FilterTasksFinishedByGroups(ctx context.Context, groupIDs []int) ([]task.CompletedTask, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()

	var finished []task.CompletedTask
	for _, t := range repo.tasksByID() {
		for _, gid := range groupIDs {
			if at, ok := repo.db.task.groupDone[completionKey{ownerID: gid, taskID: t.ID}]; ok {
				finished = append(finished, task.CompletedTask{Task: t, FinishedAt: at})
			}
		}
	}
	return finished, nil
}

func (repo *taskRepository) FilterUserUnfinishedTasks(ctx context.Context, userID int, groupIDs []int) ([]task.Task, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	courses := make(map[string]struct{}, len(groupIDs))
	for _, gid := range groupIDs {
		if grp, ok := repo.db.group.table[gid]; ok {
			courses[grp.Course] = struct{}{}
		}
	}

	var unfinished []task.Task
	for _, t := range repo.tasksByID() {
		switch t.Mode {
		case task.ModeIndividual:
			if _, ok := repo.db.task.userDone[completionKey{ownerID: userID, taskID: t.ID}]; !ok {
				unfinished = append(unfinished, t)
			}
		case task.ModeGroup:
			if _, ok := courses[t.Course]; !ok {
				continue
			}
			done := false
			for _, gid := range groupIDs {
				if _, ok := repo.db.task.groupDone[completionKey{ownerID: gid, taskID: t.ID}]; ok {
					done = true
					break
				}
			}
			if !done {
				unfinished = append(unfinished, t)
			}
		}
	}
	return unfinished, nil
}

func (repo *taskRepository) FilterGroupUnfinishedTasks(ctx context.Context, groupID int) ([]task.Task, error) {
	repo.db.task.RLock()
	defer repo.db.task.RUnlock()
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	grp, ok := repo.db.group.table[groupID]
	if !ok {
		return nil, group.ErrNotFound
	}

	var unfinished []task.Task
	for _, t := range repo.tasksByID() {
		if t.Mode != task.ModeGroup || t.Course != grp.Course {
			continue
		}
		if _, ok := repo.db.task.groupDone[completionKey{ownerID: groupID, taskID: t.ID}]; !ok {
			unfinished = append(unfinished, t)
		}
	}
	return unfinished, nil
}

// helpers; callers must hold the relevant table locks.

func (repo *taskRepository) tasksByID() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.task.table))
	for _, t := range repo.db.task.table {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

func (repo *taskRepository) usersByID() []user.User {
	users := make([]user.User, 0, len(repo.db.user.table))
	for _, u := range repo.db.user.table {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *taskRepository) groupsByCourse(course string) []group.Group {
	var groups []group.Group
	for _, grp := range repo.db.group.table {
		if grp.Course != course {
			continue
		}
		g := *grp
		g.Members = repo.db.groupMembers(g.ID)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}
