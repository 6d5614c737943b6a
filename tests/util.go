package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role user.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     null.NewString(email, email != ""),
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser(): %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func CreateGroup(t *testing.T, repo group.Repository, course string, memberIDs ...int) group.Group {
	t.Helper()

	ctx := context.Background()
	grp, err := repo.CreateGroup(ctx, course)
	if err != nil {
		t.Fatalf("CreateGroup(): %v", err)
	}
	if len(memberIDs) > 0 {
		if err = repo.AddGroupMembers(ctx, grp.ID, memberIDs); err != nil {
			t.Fatalf("CreateGroup(): %v", err)
		}
		if grp, err = repo.GetGroupByID(ctx, grp.ID); err != nil {
			t.Fatalf("CreateGroup(): %v", err)
		}
	}
	return grp
}

func CreateTask(t *testing.T, repo task.Repository, course, title string, mode task.Mode) task.Task {
	t.Helper()

	now := time.Now().UTC()
	tsk, err := repo.CreateTask(context.Background(), task.Task{
		Course:    course,
		Title:     title,
		Mode:      mode,
		DueAt:     now.Add(7 * 24 * time.Hour),
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateTask(): %v", err)
	}
	return tsk
}
