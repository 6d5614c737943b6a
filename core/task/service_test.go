package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
	dummydb "github.com/trezcool/kazi/storage/database/dummy"
	testutil "github.com/trezcool/kazi/tests"
)

func setup(t *testing.T) (*task.Service, task.Repository, user.Repository, group.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	usrRepo := dummydb.NewUserRepository(db)
	grpRepo := dummydb.NewGroupRepository(db)
	tskRepo := dummydb.NewTaskRepository(db)
	svc := task.NewService(tskRepo, group.NewService(grpRepo))
	return svc, tskRepo, usrRepo, grpRepo
}

func TestService_ResolveForTask_individual(t *testing.T) {
	svc, repo, usrRepo, _ := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob", "", "", user.RoleMember)
	t1 := testutil.CreateTask(t, repo, "CS101", "T1", task.ModeIndividual)

	require.NoError(t, svc.MarkMemberFinished(ctx, alice.ID, t1.ID))

	st, err := svc.ResolveForTask(ctx, t1.ID)
	require.NoError(t, err)
	is, ok := st.(*task.IndividualStatus)
	require.True(t, ok)

	// finished ⊎ unfinished covers the full member set exactly once
	require.Len(t, is.FinishedMembers, 1)
	assert.Equal(t, alice.ID, is.FinishedMembers[0].ID)
	assert.False(t, is.FinishedMembers[0].FinishedAt.IsZero())
	require.Len(t, is.UnfinishedMembers, 1)
	assert.Equal(t, bob.ID, is.UnfinishedMembers[0].ID)
}

func TestService_ResolveForTask_group(t *testing.T) {
	svc, repo, usrRepo, grpRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	g1 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	g2 := testutil.CreateGroup(t, grpRepo, "CS101")
	testutil.CreateGroup(t, grpRepo, "MATH201") // other course, out of scope
	t2 := testutil.CreateTask(t, repo, "CS101", "T2", task.ModeGroup)

	require.NoError(t, svc.MarkGroupFinished(ctx, g1.ID, t2.ID))

	st, err := svc.ResolveForTask(ctx, t2.ID)
	require.NoError(t, err)
	gs, ok := st.(*task.GroupModeStatus)
	require.True(t, ok)

	require.Len(t, gs.FinishedGroups, 1)
	assert.Equal(t, g1.ID, gs.FinishedGroups[0].ID)
	require.Len(t, gs.FinishedGroups[0].Members, 1)
	assert.Equal(t, alice.ID, gs.FinishedGroups[0].Members[0].ID)

	// empty roster still hydrated as [], not omitted
	require.Len(t, gs.UnfinishedGroups, 1)
	assert.Equal(t, g2.ID, gs.UnfinishedGroups[0].ID)
	assert.NotNil(t, gs.UnfinishedGroups[0].Members)
	assert.Empty(t, gs.UnfinishedGroups[0].Members)
}

func TestService_ResolveForTask_unknownMode(t *testing.T) {
	svc, repo, _, _ := setup(t)
	ctx := context.Background()

	tsk, err := repo.CreateTask(ctx, task.Task{Course: "CS101", Title: "broken", Mode: task.Mode(7)})
	require.NoError(t, err)

	_, err = svc.ResolveForTask(ctx, tsk.ID)
	assert.Equal(t, task.ErrNotFound, err)

	_, err = svc.ResolveForTask(ctx, 999)
	assert.Equal(t, task.ErrNotFound, err)
}

func TestService_ResolveForMember(t *testing.T) {
	svc, repo, usrRepo, grpRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	g1 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	t1 := testutil.CreateTask(t, repo, "CS101", "T1", task.ModeIndividual)
	t2 := testutil.CreateTask(t, repo, "CS101", "T2", task.ModeGroup)
	t3 := testutil.CreateTask(t, repo, "CS101", "T3", task.ModeGroup)
	testutil.CreateTask(t, repo, "MATH201", "T4", task.ModeGroup) // not applicable: no group membership

	// inherited through the group, no direct completion row
	require.NoError(t, svc.MarkGroupFinished(ctx, g1.ID, t2.ID))

	mt, err := svc.ResolveForMember(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, mt.MemberID)

	require.Len(t, mt.Finished, 1)
	assert.Equal(t, t2.ID, mt.Finished[0].ID)

	// unfinished: the individual task system-wide + the group task of her course
	ids := make([]int, 0, len(mt.Unfinished))
	for _, tsk := range mt.Unfinished {
		ids = append(ids, tsk.ID)
	}
	assert.ElementsMatch(t, []int{t1.ID, t3.ID}, ids)
}

func TestService_ResolveForMember_earliestInheritedWins(t *testing.T) {
	svc, repo, usrRepo, grpRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	g1 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	g2 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	t2 := testutil.CreateTask(t, repo, "CS101", "T2", task.ModeGroup)

	require.NoError(t, svc.MarkGroupFinished(ctx, g1.ID, t2.ID))
	require.NoError(t, svc.MarkGroupFinished(ctx, g2.ID, t2.ID))

	all, err := repo.FilterTasksFinishedByGroups(ctx, []int{g1.ID, g2.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	earliest := all[0].FinishedAt
	if all[1].FinishedAt.Before(earliest) {
		earliest = all[1].FinishedAt
	}

	mt, err := svc.ResolveForMember(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mt.Finished, 1)
	assert.Equal(t, t2.ID, mt.Finished[0].ID)
	assert.Equal(t, earliest, mt.Finished[0].FinishedAt)
}

func TestService_ResolveForMember_emptyPartitions(t *testing.T) {
	svc, _, usrRepo, _ := setup(t)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)

	mt, err := svc.ResolveForMember(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.NotNil(t, mt.Finished)
	assert.Empty(t, mt.Finished)
	assert.NotNil(t, mt.Unfinished)
	assert.Empty(t, mt.Unfinished)
}

func TestService_ResolveForGroup(t *testing.T) {
	svc, repo, usrRepo, grpRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	g1 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	t2 := testutil.CreateTask(t, repo, "CS101", "T2", task.ModeGroup)
	t3 := testutil.CreateTask(t, repo, "CS101", "T3", task.ModeGroup)
	testutil.CreateTask(t, repo, "CS101", "T1", task.ModeIndividual) // not a group task
	testutil.CreateTask(t, repo, "MATH201", "T4", task.ModeGroup)    // other course

	require.NoError(t, svc.MarkGroupFinished(ctx, g1.ID, t2.ID))

	gt, err := svc.ResolveForGroup(ctx, g1.ID)
	require.NoError(t, err)
	assert.Equal(t, g1.ID, gt.GroupID)
	require.Len(t, gt.Finished, 1)
	assert.Equal(t, t2.ID, gt.Finished[0].ID)
	require.Len(t, gt.Unfinished, 1)
	assert.Equal(t, t3.ID, gt.Unfinished[0].ID)

	_, err = svc.ResolveForGroup(ctx, 999)
	assert.Equal(t, group.ErrNotFound, err)
}

func TestService_markCompletions(t *testing.T) {
	svc, repo, usrRepo, grpRepo := setup(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice", "", "", user.RoleMember)
	g1 := testutil.CreateGroup(t, grpRepo, "CS101", alice.ID)
	t1 := testutil.CreateTask(t, repo, "CS101", "T1", task.ModeIndividual)
	t2 := testutil.CreateTask(t, repo, "CS101", "T2", task.ModeGroup)

	// duplicate marks conflict
	require.NoError(t, svc.MarkMemberFinished(ctx, alice.ID, t1.ID))
	assert.Equal(t, task.ErrCompletionExists, svc.MarkMemberFinished(ctx, alice.ID, t1.ID))
	require.NoError(t, svc.MarkGroupFinished(ctx, g1.ID, t2.ID))
	assert.Equal(t, task.ErrCompletionExists, svc.MarkGroupFinished(ctx, g1.ID, t2.ID))

	// completion writes must match the task's mode
	assert.Equal(t, task.ErrModeMismatch, svc.MarkMemberFinished(ctx, alice.ID, t2.ID))
	assert.Equal(t, task.ErrModeMismatch, svc.MarkGroupFinished(ctx, g1.ID, t1.ID))
	assert.Equal(t, task.ErrModeMismatch, svc.MarkMemberUnfinished(ctx, alice.ID, t2.ID))
	assert.Equal(t, task.ErrModeMismatch, svc.MarkGroupUnfinished(ctx, g1.ID, t1.ID))

	// unknown task
	assert.Equal(t, task.ErrNotFound, svc.MarkMemberFinished(ctx, alice.ID, 999))

	// unmark, then unmark again
	require.NoError(t, svc.MarkMemberUnfinished(ctx, alice.ID, t1.ID))
	assert.Equal(t, task.ErrCompletionNotFound, svc.MarkMemberUnfinished(ctx, alice.ID, t1.ID))
	require.NoError(t, svc.MarkGroupUnfinished(ctx, g1.ID, t2.ID))
	assert.Equal(t, task.ErrCompletionNotFound, svc.MarkGroupUnfinished(ctx, g1.ID, t2.ID))
}

func TestService_taskCRUD(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	tsk, err := svc.Create(ctx, task.NewTask{Course: "CS101", Title: "T1", Mode: task.ModeIndividual})
	require.NoError(t, err)
	assert.NotZero(t, tsk.ID)

	tsk, err = svc.Update(ctx, task.UpdateTask{TaskID: tsk.ID, Title: "T1 v2", Description: "updated"})
	require.NoError(t, err)
	assert.Equal(t, "T1 v2", tsk.Title)
	assert.Equal(t, "updated", tsk.Description)

	tasks, err := svc.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	require.NoError(t, svc.Delete(ctx, tsk.ID))
	_, err = svc.GetByID(ctx, tsk.ID)
	assert.Equal(t, task.ErrNotFound, err)
}
