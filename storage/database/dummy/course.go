package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/kazi/core/course"
)

var coursePKCount int

type courseRepository struct {
	db *courseTable
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.course}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, name string) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, crs := range repo.db.table {
		if crs.Name == name {
			return course.Course{}, course.ErrCourseExists
		}
	}

	coursePKCount++
	crs := course.Course{ID: coursePKCount, Name: name}
	repo.db.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses(ctx context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.table))
	for _, crs := range repo.db.table {
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}
