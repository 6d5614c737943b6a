package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/user"
)

var groupPKCount int

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil) // interface compliance check

func NewGroupRepository(db *DB) group.Repository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, course string) (group.Group, error) {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	number := 0
	for _, grp := range repo.db.group.table {
		if grp.Course == course && grp.Number > number {
			number = grp.Number
		}
	}

	groupPKCount++
	grp := group.Group{
		ID:        groupPKCount,
		Course:    course,
		Number:    number + 1,
		Members:   []user.User{},
		CreatedAt: time.Now().UTC(),
	}
	repo.db.group.table[grp.ID] = &grp
	repo.db.group.members[grp.ID] = make(map[int]struct{})
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.group.table))
	for _, grp := range repo.db.group.table {
		g := *grp
		g.Members = repo.db.groupMembers(g.ID)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id int) (group.Group, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	if grp, ok := repo.db.group.table[id]; ok {
		g := *grp
		g.Members = repo.db.groupMembers(g.ID)
		return g, nil
	}
	return group.Group{}, group.ErrNotFound
}

func (repo *groupRepository) AddGroupMembers(ctx context.Context, groupID int, userIDs []int) error {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()
	repo.db.user.RLock()
	defer repo.db.user.RUnlock()

	if _, ok := repo.db.group.table[groupID]; !ok {
		return group.ErrNotFound
	}
	for _, uid := range userIDs {
		if _, ok := repo.db.user.table[uid]; !ok {
			return group.ErrUnknownMembers
		}
	}
	for _, uid := range userIDs {
		if _, ok := repo.db.group.members[groupID][uid]; ok {
			return group.ErrMemberExists
		}
	}
	for _, uid := range userIDs {
		repo.db.group.members[groupID][uid] = struct{}{}
	}
	return nil
}

func (repo *groupRepository) RemoveGroupMember(ctx context.Context, groupID, userID int) error {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()

	if _, ok := repo.db.group.table[groupID]; !ok {
		return group.ErrNotFound
	}
	if _, ok := repo.db.group.members[groupID][userID]; !ok {
		return group.ErrMembershipNotFound
	}
	delete(repo.db.group.members[groupID], userID)
	return nil
}

func (repo *groupRepository) DeleteGroupsByID(ctx context.Context, ids ...int) error {
	repo.db.group.Lock()
	defer repo.db.group.Unlock()
	repo.db.task.Lock()
	defer repo.db.task.Unlock()

	for _, id := range ids {
		delete(repo.db.group.table, id)
		delete(repo.db.group.members, id)
		for key := range repo.db.task.groupDone {
			if key.ownerID == id {
				delete(repo.db.task.groupDone, key)
			}
		}
	}
	return nil
}

func (repo *groupRepository) FilterUserGroupIDs(ctx context.Context, userID int) ([]int, error) {
	repo.db.group.RLock()
	defer repo.db.group.RUnlock()

	var ids []int
	for gid, members := range repo.db.group.members {
		if _, ok := members[userID]; ok {
			ids = append(ids, gid)
		}
	}
	sort.Ints(ids)
	return ids, nil
}
