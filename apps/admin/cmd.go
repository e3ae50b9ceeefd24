package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/qisedu/udahili/core/admin"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db     *sqlx.DB
	admSvc *admin.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the database and application user if they do not exist")
	fmt.Println("  migratedb - apply all pending database migrations")
	fmt.Println("  addadmin -name NAME -email EMAIL [-role ROLE] - create an admin account")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminName := addAdminCmd.String("name", "", "The account holder's full name.")
	addAdminEmail := addAdminCmd.String("email", "", "The account's email. The password will be prompted next.")
	addAdminRole := addAdminCmd.String("role", admin.RoleAdmin, "The account's role: admin, reviewer or viewer.")

	switch args[1] {
	case "createdb":
		return cli.createDB()
	case "migratedb":
		return cli.migrate()
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminName == "" || *addAdminEmail == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(*addAdminName, *addAdminEmail, *addAdminRole, string(pwd))
	default:
		cli.printUsage()
		return errHelp
	}
}
