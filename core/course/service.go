package course

import (
	"context"

	"github.com/trezcool/kazi/core"
)

var ErrCourseExists = core.ConflictErr("a course with this name already exists")

type (
	Repository interface {
		CreateCourse(ctx context.Context, name string) (Course, error)
		QueryAllCourses(ctx context.Context) ([]Course, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, nc.Name)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}
