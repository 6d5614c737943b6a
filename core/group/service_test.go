package group_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/user"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
	testutil "github.com/trezcool/kazi/tests"
)

func setup(t *testing.T) (*group.Service, group.Repository, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	grpRepo := dummydb.NewGroupRepository(db)
	return group.NewService(grpRepo), grpRepo, dummydb.NewUserRepository(db)
}

func TestService_Create_sequentialNumbering(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		grp, err := svc.Create(ctx, group.NewGroup{Course: "CS101"})
		require.NoError(t, err)
		assert.Equal(t, want, grp.Number)
		assert.NotNil(t, grp.Members)
	}

	// numbering is independent per course
	grp, err := svc.Create(ctx, group.NewGroup{Course: "MATH201"})
	require.NoError(t, err)
	assert.Equal(t, 1, grp.Number)
}

func TestService_Create_concurrent(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			grp, err := svc.Create(ctx, group.NewGroup{Course: "CS101"})
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- grp.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int]bool, n)
	for num := range numbers {
		assert.False(t, seen[num], "number %d allocated twice", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
}

func TestService_AddMembers(t *testing.T) {
	svc, grpRepo, usrRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob", "", "", user.RoleMember)
	grp := testutil.CreateGroup(t, grpRepo, "CS101")

	require.NoError(t, svc.AddMembers(ctx, grp.ID, group.AddMembers{Users: []int{alice.ID, bob.ID}}))

	got, err := svc.GetByID(ctx, grp.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 2)

	// duplicate member conflicts, nothing is added
	err = svc.AddMembers(ctx, grp.ID, group.AddMembers{Users: []int{alice.ID}})
	assert.Equal(t, group.ErrMemberExists, err)

	// unknown member is unprocessable
	err = svc.AddMembers(ctx, grp.ID, group.AddMembers{Users: []int{999}})
	assert.Equal(t, group.ErrUnknownMembers, err)

	// unknown group
	err = svc.AddMembers(ctx, 999, group.AddMembers{Users: []int{alice.ID}})
	assert.Equal(t, group.ErrNotFound, err)
}

func TestService_RemoveMember(t *testing.T) {
	svc, grpRepo, usrRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	grp := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)

	require.NoError(t, svc.RemoveMember(ctx, grp.ID, alice.ID))

	// removing a missing membership affects zero rows
	assert.Equal(t, group.ErrMembershipNotFound, svc.RemoveMember(ctx, grp.ID, alice.ID))
	assert.Equal(t, group.ErrNotFound, svc.RemoveMember(ctx, 999, alice.ID))
}

func TestService_QueryAll_hydration(t *testing.T) {
	svc, grpRepo, usrRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	g1 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	g2 := testutil.CreateGroup(t, grpRepo, "CS101")

	groups, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, g1.ID, groups[0].ID)
	require.Len(t, groups[0].Members, 1)
	assert.Equal(t, alice.ID, groups[0].Members[0].ID)

	// memberless group is returned with an empty roster, not omitted
	assert.Equal(t, g2.ID, groups[1].ID)
	assert.NotNil(t, groups[1].Members)
	assert.Empty(t, groups[1].Members)
}

func TestService_Delete_cascades(t *testing.T) {
	svc, grpRepo, usrRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	grp := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)

	require.NoError(t, svc.Delete(ctx, grp.ID))

	_, err := svc.GetByID(ctx, grp.ID)
	assert.Equal(t, group.ErrNotFound, err)

	ids, err := svc.MemberGroupIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
