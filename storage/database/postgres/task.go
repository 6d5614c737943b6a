package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

type taskRow struct {
	ID          int       `db:"id"`
	Course      string    `db:"course"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Mode        int       `db:"mode"`
	DueAt       time.Time `db:"due_at"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row taskRow) toTask() task.Task {
	return task.Task{
		ID:          row.ID,
		Course:      row.Course,
		Title:       row.Title,
		Description: row.Description,
		Mode:        task.Mode(row.Mode),
		DueAt:       row.DueAt,
		CreatedAt:   row.CreatedAt,
	}
}

const selectTask = "SELECT t.id, t.course, t.title, t.description, t.mode, t.due_at, t.created_at FROM tasks t"

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO tasks (course, title, description, mode, due_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		t.Course, t.Title, t.Description, int(t.Mode), t.DueAt, t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		return task.Task{}, err
	}
	return t, nil
}

func (repo *taskRepository) QueryAllTasks(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, selectTask+" ORDER BY t.id"); err != nil {
		return nil, err
	}
	return toTasks(rows), nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id int) (task.Task, error) {
	var row taskRow
	if err := repo.db.GetContext(ctx, &row, selectTask+" WHERE t.id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return row.toTask(), nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task) (task.Task, error) {
	var row taskRow
	err := repo.db.QueryRowxContext(ctx,
		`UPDATE tasks SET title = $2, description = $3 WHERE id = $1
		 RETURNING id, course, title, description, mode, due_at, created_at`,
		t.ID, t.Title, t.Description,
	).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return row.toTask(), nil
}

func (repo *taskRepository) DeleteTasksByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM tasks WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	return err
}

func (repo *taskRepository) CreateUserCompletion(ctx context.Context, userID, taskID int) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO user_completions (user_id, task_id, finished_at) VALUES ($1, $2, $3)",
		userID, taskID, time.Now().UTC(),
	)
	switch pqErrorCode(err) {
	case pqUniqueViolation:
		return task.ErrCompletionExists
	case pqForeignKeyViolation:
		return errUnknownRelation
	}
	return err
}

func (repo *taskRepository) DeleteUserCompletion(ctx context.Context, userID, taskID int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM user_completions WHERE user_id = $1 AND task_id = $2", userID, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrCompletionNotFound
	}
	return nil
}

func (repo *taskRepository) CreateGroupCompletion(ctx context.Context, groupID, taskID int) error {
	_, err := repo.db.ExecContext(ctx,
		"INSERT INTO group_completions (group_id, task_id, finished_at) VALUES ($1, $2, $3)",
		groupID, taskID, time.Now().UTC(),
	)
	switch pqErrorCode(err) {
	case pqUniqueViolation:
		return task.ErrCompletionExists
	case pqForeignKeyViolation:
		return errUnknownRelation
	}
	return err
}

func (repo *taskRepository) DeleteGroupCompletion(ctx context.Context, groupID, taskID int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM group_completions WHERE group_id = $1 AND task_id = $2", groupID, taskID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.ErrCompletionNotFound
	}
	return nil
}

func (repo *taskRepository) FilterFinishedMembers(ctx context.Context, taskID int) ([]task.MemberStatus, error) {
	var rows []struct {
		userRow
		FinishedAt time.Time `db:"finished_at"`
	}
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT u.id, u.username, u.name, u.email, u.role, u.avatar, u.password_hash, u.created_at, u.updated_at, uc.finished_at
		 FROM user_completions uc
		 JOIN users u ON u.id = uc.user_id
		 WHERE uc.task_id = $1
		 ORDER BY u.id`, taskID)
	if err != nil {
		return nil, err
	}

	finished := make([]task.MemberStatus, 0, len(rows))
	for _, row := range rows {
		finished = append(finished, task.MemberStatus{User: row.toUser(), FinishedAt: row.FinishedAt})
	}
	return finished, nil
}

func (repo *taskRepository) FilterUnfinishedMembers(ctx context.Context, taskID int) ([]user.User, error) {
	var rows []userRow
	err := repo.db.SelectContext(ctx, &rows,
		selectUser+` WHERE id NOT IN (SELECT user_id FROM user_completions WHERE task_id = $1) ORDER BY id`, taskID)
	if err != nil {
		return nil, err
	}

	unfinished := make([]user.User, 0, len(rows))
	for _, row := range rows {
		unfinished = append(unfinished, row.toUser())
	}
	return unfinished, nil
}

func (repo *taskRepository) FilterFinishedGroups(ctx context.Context, taskID int, course string) ([]task.GroupStatus, error) {
	var rows []struct {
		groupRow
		FinishedAt time.Time `db:"finished_at"`
	}
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT g.id, g.course, g.number, g.created_at, gc.finished_at
		 FROM group_completions gc
		 JOIN groups g ON g.id = gc.group_id
		 WHERE gc.task_id = $1 AND g.course = $2
		 ORDER BY g.id`, taskID, course)
	if err != nil {
		return nil, err
	}

	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toGroup())
	}
	if err = hydrateMembers(ctx, repo.db, groups); err != nil {
		return nil, err
	}

	finished := make([]task.GroupStatus, 0, len(rows))
	for i, row := range rows {
		finished = append(finished, task.GroupStatus{Group: groups[i], FinishedAt: row.FinishedAt})
	}
	return finished, nil
}

func (repo *taskRepository) FilterUnfinishedGroups(ctx context.Context, taskID int, course string) ([]group.Group, error) {
	var rows []groupRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT id, course, number, created_at FROM groups
		 WHERE course = $2 AND id NOT IN (SELECT group_id FROM group_completions WHERE task_id = $1)
		 ORDER BY id`, taskID, course)
	if err != nil {
		return nil, err
	}

	unfinished := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		unfinished = append(unfinished, row.toGroup())
	}
	if err = hydrateMembers(ctx, repo.db, unfinished); err != nil {
		return nil, err
	}
	return unfinished, nil
}

func (repo *taskRepository) FilterUserFinishedTasks(ctx context.Context, userID int) ([]task.CompletedTask, error) {
	var rows []completedTaskRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT t.id, t.course, t.title, t.description, t.mode, t.due_at, t.created_at, uc.finished_at
		 FROM user_completions uc
		 JOIN tasks t ON t.id = uc.task_id
		 WHERE uc.user_id = $1
		 ORDER BY t.id`, userID)
	if err != nil {
		return nil, err
	}
	return toCompletedTasks(rows), nil
}

func (repo *taskRepository) FilterTasksFinishedByGroups(ctx context.Context, groupIDs []int) ([]task.CompletedTask, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT t.id, t.course, t.title, t.description, t.mode, t.due_at, t.created_at, gc.finished_at
		 FROM group_completions gc
		 JOIN tasks t ON t.id = gc.task_id
		 WHERE gc.group_id IN (?)
		 ORDER BY t.id`, groupIDs)
	if err != nil {
		return nil, err
	}

	var rows []completedTaskRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return toCompletedTasks(rows), nil
}

func (repo *taskRepository) FilterUserUnfinishedTasks(ctx context.Context, userID int, groupIDs []int) ([]task.Task, error) {
	// individual tasks apply to every member
	var rows []taskRow
	err := repo.db.SelectContext(ctx, &rows,
		selectTask+` WHERE t.mode = $1 AND t.id NOT IN (SELECT task_id FROM user_completions WHERE user_id = $2) ORDER BY t.id`,
		int(task.ModeIndividual), userID)
	if err != nil {
		return nil, err
	}
	unfinished := toTasks(rows)

	// group tasks apply through the member's groups' courses
	if len(groupIDs) > 0 {
		query, args, err := sqlx.In(
			selectTask+` WHERE t.mode = ?
			 AND t.course IN (SELECT course FROM groups WHERE id IN (?))
			 AND t.id NOT IN (SELECT task_id FROM group_completions WHERE group_id IN (?))
			 ORDER BY t.id`,
			int(task.ModeGroup), groupIDs, groupIDs)
		if err != nil {
			return nil, err
		}
		var groupRows []taskRow
		if err = repo.db.SelectContext(ctx, &groupRows, repo.db.Rebind(query), args...); err != nil {
			return nil, err
		}
		unfinished = append(unfinished, toTasks(groupRows)...)
	}
	return unfinished, nil
}

func (repo *taskRepository) FilterGroupUnfinishedTasks(ctx context.Context, groupID int) ([]task.Task, error) {
	var rows []taskRow
	err := repo.db.SelectContext(ctx, &rows,
		selectTask+` JOIN groups g ON g.course = t.course
		 WHERE g.id = $1 AND t.mode = $2
		 AND t.id NOT IN (SELECT task_id FROM group_completions WHERE group_id = $1)
		 ORDER BY t.id`,
		groupID, int(task.ModeGroup))
	if err != nil {
		return nil, err
	}
	return toTasks(rows), nil
}

type completedTaskRow struct {
	taskRow
	FinishedAt time.Time `db:"finished_at"`
}

func toTasks(rows []taskRow) []task.Task {
	tasks := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks
}

func toCompletedTasks(rows []completedTaskRow) []task.CompletedTask {
	completed := make([]task.CompletedTask, 0, len(rows))
	for _, row := range rows {
		completed = append(completed, task.CompletedTask{Task: row.toTask(), FinishedAt: row.FinishedAt})
	}
	return completed
}
