package group

import (
	"context"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

var (
	// errors
	ErrNotFound           = core.NotFoundErr("group not found")
	ErrMembershipNotFound = core.NotFoundErr("member not in group")
	ErrMemberExists       = core.ConflictErr("some members are already in the group")
	ErrUnknownMembers     = core.UnprocessableErr("some members do not exist")
)

type (
	Repository interface {
		// CreateGroup allocates the next per-course number and inserts the row
		// as one atomic operation.
		CreateGroup(ctx context.Context, course string) (Group, error)
		// QueryAllGroups returns every group with its hydrated member roster;
		// groups without members are included with an empty roster.
		QueryAllGroups(ctx context.Context) ([]Group, error)
		GetGroupByID(ctx context.Context, id int) (Group, error)
		AddGroupMembers(ctx context.Context, groupID int, userIDs []int) error
		RemoveGroupMember(ctx context.Context, groupID, userID int) error
		// DeleteGroupsByID cascades memberships and group completions.
		DeleteGroupsByID(ctx context.Context, ids ...int) error
		FilterUserGroupIDs(ctx context.Context, userID int) ([]int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	grp, err := svc.repo.CreateGroup(ctx, ng.Course)
	if err != nil {
		return Group{}, err
	}
	if grp.Members == nil {
		grp.Members = []user.User{}
	}
	return grp, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Group, error) {
	groups, err := svc.repo.QueryAllGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].Members == nil {
			groups[i].Members = []user.User{}
		}
	}
	return groups, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Group, error) {
	grp, err := svc.repo.GetGroupByID(ctx, id)
	if err != nil {
		return Group{}, err
	}
	if grp.Members == nil {
		grp.Members = []user.User{}
	}
	return grp, nil
}

func (svc *Service) AddMembers(ctx context.Context, groupID int, am AddMembers) error {
	return svc.repo.AddGroupMembers(ctx, groupID, am.Users)
}

func (svc *Service) RemoveMember(ctx context.Context, groupID, userID int) error {
	return svc.repo.RemoveGroupMember(ctx, groupID, userID)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteGroupsByID(ctx, ids...)
}

// MemberGroupIDs lists the ids of every group the user currently belongs to.
func (svc *Service) MemberGroupIDs(ctx context.Context, userID int) ([]int, error) {
	return svc.repo.FilterUserGroupIDs(ctx, userID)
}
