package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
)

// addMember updates or creates a member.
func (cli *commandLine) addMember(uname, name, role, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)

	r := user.Role(role)
	if !r.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}

	usr, err := cli.usrRepo.GetUserByUsername(ctx, uname)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Name:     name,
			Role:     r,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		now := time.Now().UTC()
		usr.CreatedAt, usr.UpdatedAt = now, now
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.Name = name
	usr.Role = r
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
