package pgrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/kazi/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, name string) (course.Course, error) {
	crs := course.Course{Name: name}
	err := repo.db.QueryRowxContext(ctx, "INSERT INTO courses (name) VALUES ($1) RETURNING id", name).Scan(&crs.ID)
	if err != nil {
		if pqErrorCode(err) == pqUniqueViolation {
			return course.Course{}, course.ErrCourseExists
		}
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	var rows []struct {
		ID   int    `db:"id"`
		Name string `db:"name"`
	}
	if err := repo.db.SelectContext(ctx, &rows, "SELECT id, name FROM courses ORDER BY id"); err != nil {
		return nil, err
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, course.Course{ID: row.ID, Name: row.Name})
	}
	return courses, nil
}
