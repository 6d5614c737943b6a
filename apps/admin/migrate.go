package main

import (
	"fmt"

	"github.com/trezcool/goose"

	appfs "github.com/trezcool/kazi/fs"
)

func (cli *commandLine) migrate(command string) error {
	switch command {
	case "up":
		return goose.Up(cli.db.DB, appfs.FS, "migrations")
	case "down":
		return goose.Down(cli.db.DB, appfs.FS, "migrations")
	case "redo":
		return goose.Redo(cli.db.DB, appfs.FS, "migrations")
	}
	return fmt.Errorf("unknown migrate command %q", command)
}
