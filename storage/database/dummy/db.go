package dummydb

import (
	"sort"
	"sync"
	"time"

	"github.com/trezcool/kazi/core/course"
	"github.com/trezcool/kazi/core/group"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

type (
	DB struct {
		user   *userTable
		course *courseTable
		group  *groupTable
		task   *taskTable
	}

	userTable struct {
		sync.RWMutex
		table map[int]*user.User
	}

	courseTable struct {
		sync.RWMutex
		table map[int]*course.Course
	}

	groupTable struct {
		sync.RWMutex
		table   map[int]*group.Group
		members map[int]map[int]struct{} // group id -> user ids
	}

	taskTable struct {
		sync.RWMutex
		table     map[int]*task.Task
		userDone  map[completionKey]time.Time // {user, task} -> finished at
		groupDone map[completionKey]time.Time // {group, task} -> finished at
	}

	completionKey struct {
		ownerID int
		taskID  int
	}
)

// groupMembers hydrates a group's roster, sorted by user id.
// Callers must hold the group and user table locks.
func (db *DB) groupMembers(groupID int) []user.User {
	ids := make([]int, 0, len(db.group.members[groupID]))
	for uid := range db.group.members[groupID] {
		ids = append(ids, uid)
	}
	sort.Ints(ids)

	members := make([]user.User, 0, len(ids))
	for _, uid := range ids {
		if usr, ok := db.user.table[uid]; ok {
			members = append(members, *usr)
		}
	}
	return members
}

func Open() (*DB, error) {
	db := &DB{
		user:   &userTable{table: make(map[int]*user.User)},
		course: &courseTable{table: make(map[int]*course.Course)},
		group: &groupTable{
			table:   make(map[int]*group.Group),
			members: make(map[int]map[int]struct{}),
		},
		task: &taskTable{
			table:     make(map[int]*task.Task),
			userDone:  make(map[completionKey]time.Time),
			groupDone: make(map[completionKey]time.Time),
		},
	}
	return db, nil
}
