package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/user"
)

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *sqlx.DB) group.Repository {
	return &groupRepository{db: db}
}

type groupRow struct {
	ID        int       `db:"id"`
	Course    string    `db:"course"`
	Number    int       `db:"number"`
	CreatedAt time.Time `db:"created_at"`
}

func (row groupRow) toGroup() group.Group {
	return group.Group{ID: row.ID, Course: row.Course, Number: row.Number, CreatedAt: row.CreatedAt}
}

// createGroupRetries bounds the number-allocation retry loop; a retry only
// happens when a concurrent insert claims the same (course, number) pair.
const createGroupRetries = 3

func (repo *groupRepository) CreateGroup(ctx context.Context, course string) (group.Group, error) {
	var row groupRow
	var err error
	for attempt := 0; attempt < createGroupRetries; attempt++ {
		err = repo.db.QueryRowxContext(ctx,
			`INSERT INTO groups (course, number)
			 SELECT $1, COALESCE(MAX(number), 0) + 1 FROM groups WHERE course = $1
			 RETURNING id, course, number, created_at`,
			course,
		).StructScan(&row)
		if err == nil {
			return row.toGroup(), nil
		}
		if pqErrorCode(err) != pqUniqueViolation {
			break
		}
	}
	return group.Group{}, err
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, course, number, created_at FROM groups ORDER BY id"); err != nil {
		return nil, err
	}

	groups := make([]group.Group, 0, len(rows))
	for _, row := range rows {
		groups = append(groups, row.toGroup())
	}
	if err := hydrateMembers(ctx, repo.db, groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id int) (group.Group, error) {
	var row groupRow
	if err := repo.db.GetContext(ctx, &row, "SELECT id, course, number, created_at FROM groups WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, group.ErrNotFound
		}
		return group.Group{}, err
	}

	groups := []group.Group{row.toGroup()}
	if err := hydrateMembers(ctx, repo.db, groups); err != nil {
		return group.Group{}, err
	}
	return groups[0], nil
}

// AddGroupMembers inserts the whole batch in one transaction; it succeeds or
// fails as one unit.
func (repo *groupRepository) AddGroupMembers(ctx context.Context, groupID int, userIDs []int) error {
	var exists bool
	if err := repo.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)", groupID); err != nil {
		return err
	}
	if !exists {
		return group.ErrNotFound
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, uid := range userIDs {
		if _, err = tx.ExecContext(ctx, "INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)", groupID, uid); err != nil {
			switch pqErrorCode(err) {
			case pqUniqueViolation:
				return group.ErrMemberExists
			case pqForeignKeyViolation:
				return group.ErrUnknownMembers
			}
			return err
		}
	}
	return tx.Commit()
}

func (repo *groupRepository) RemoveGroupMember(ctx context.Context, groupID, userID int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = $1 AND user_id = $2", groupID, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err = repo.db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM groups WHERE id = $1)", groupID); err != nil {
			return err
		}
		if !exists {
			return group.ErrNotFound
		}
		return group.ErrMembershipNotFound
	}
	return nil
}

// DeleteGroupsByID cascades memberships and group completions via the schema's
// ON DELETE CASCADE constraints.
func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM groups WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	return err
}

func (repo *groupRepository) FilterUserGroupIDs(ctx context.Context, userID int) ([]int, error) {
	var ids []int
	err := repo.db.SelectContext(ctx, &ids, "SELECT group_id FROM group_members WHERE user_id = $1 ORDER BY group_id", userID)
	return ids, err
}

// hydrateMembers attaches member rosters to the given groups with a single
// batched query instead of one query per group.
func hydrateMembers(ctx context.Context, db *sqlx.DB, groups []group.Group) error {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]int, 0, len(groups))
	byID := make(map[int]*group.Group, len(groups))
	for i := range groups {
		groups[i].Members = []user.User{}
		ids = append(ids, groups[i].ID)
		byID[groups[i].ID] = &groups[i]
	}

	query, args, err := sqlx.In(
		`SELECT gm.group_id, u.id, u.username, u.name, u.email, u.role, u.avatar, u.password_hash, u.created_at, u.updated_at
		 FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id IN (?)
		 ORDER BY gm.group_id, u.id`, ids)
	if err != nil {
		return err
	}

	var rows []struct {
		GroupID int `db:"group_id"`
		userRow
	}
	if err = db.SelectContext(ctx, &rows, db.Rebind(query), args...); err != nil {
		return err
	}
	for _, row := range rows {
		grp := byID[row.GroupID]
		grp.Members = append(grp.Members, row.toUser())
	}
	return nil
}
