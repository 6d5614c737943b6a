package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           int         `db:"id"`
	Username     string      `db:"username"`
	Name         string      `db:"name"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	Avatar       null.String `db:"avatar"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (row userRow) toUser() user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		Name:         row.Name,
		Email:        row.Email,
		Role:         user.Role(row.Role),
		Avatar:       row.Avatar,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

const selectUser = "SELECT id, username, name, email, role, avatar, password_hash, created_at, updated_at FROM users"

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	query := "SELECT COUNT(*) FROM users WHERE username = ?"
	args := []interface{}{username}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, usr := range excludedUsers {
			ids = append(ids, usr.ID)
		}
		q, inArgs, err := sqlx.In(query+" AND id NOT IN (?)", username, ids)
		if err != nil {
			return err
		}
		query, args = q, inArgs
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, repo.db.Rebind(query), args...); err != nil {
		return err
	}
	if count > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowxContext(ctx,
		`INSERT INTO users (username, name, email, role, avatar, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		usr.Username, usr.Name, usr.Email, usr.Role, usr.Avatar, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, selectUser+" ORDER BY id"); err != nil {
		return nil, err
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, selectUser+" WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, selectUser+" WHERE username = $1", username); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

// UpdateUser only saves set fields; zero values keep the stored ones.
func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	var row userRow
	err := repo.db.QueryRowxContext(ctx,
		`UPDATE users SET
			name = COALESCE(NULLIF($2, ''), name),
			role = COALESCE(NULLIF($3, ''), role),
			avatar = COALESCE($4, avatar),
			password_hash = COALESCE($5, password_hash),
			updated_at = $6
		 WHERE id = $1
		 RETURNING id, username, name, email, role, avatar, password_hash, created_at, updated_at`,
		usr.ID, usr.Name, usr.Role, usr.Avatar, usr.PasswordHash, usr.UpdatedAt,
	).StructScan(&row)
	if err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return row.toUser(), nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM users WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	return err
}
