package main

import (
	"github.com/qisedu/udahili/core"
	"github.com/qisedu/udahili/storage/database"
)

// mockable
var (
	migrateFunc  = database.Migrate
	createDBFunc = database.CreateIfNotExist
)

func (cli *commandLine) migrate() error {
	return migrateFunc(cli.db.DB)
}

func (cli *commandLine) createDB() error {
	return createDBFunc(core.Conf)
}
