package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
	testutil "github.com/trezcool/kazi/tests"
)

func setup(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{AppName: "Kazi"}
	repo := dummydb.NewUserRepository(db)
	return user.NewService(repo, emailsvc.NewConsoleServiceMock(conf), conf), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	data := user.NewUser{
		Username:        "alice",
		Name:            "Alice",
		Email:           "alice@test.cd",
		Role:            user.RoleMember,
		Password:        "G00d!pass",
		PasswordConfirm: "G00d!pass",
	}
	require.NoError(t, data.Validate(svc))

	usr, err := svc.Create(ctx, data)
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, "alice", usr.Username)
	assert.True(t, usr.Email.Valid)
	assert.NoError(t, usr.CheckPassword("G00d!pass"))

	// username uniqueness is a validation error
	err = data.Validate(svc)
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "username", vErr.Fields[0].Field)
}

func TestService_Update(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Alice", "alice", "", "", user.RoleMember)

	data := user.UpdateUser{Name: "Alice B", Role: user.RoleChair}
	require.NoError(t, data.Validate(usr))

	got, err := svc.Update(ctx, usr.ID, data)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, user.RoleChair, got.Role)

	// unknown user
	_, err = svc.Update(ctx, 999, data)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestService_Delete(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Alice", "alice", "", "", user.RoleMember)

	require.NoError(t, svc.Delete(ctx, usr.ID))
	_, err := svc.GetByID(ctx, usr.ID)
	assert.Equal(t, user.ErrNotFound, err)
}
