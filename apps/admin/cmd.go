package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/darasabot/darasa/core/classroom"
	"github.com/darasabot/darasa/core/profile"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db       *sqlx.DB
	profSvc  *profile.Service
	classSvc *classroom.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  setstatus -user ID -status STATUS - set a profile's organization status")
	fmt.Println("  addclass -name NAME [-id ID] -creator ID - create a class on behalf of a profile")
	fmt.Println("  migrate COMMAND [ARGS]            - run database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	setStatusCmd := flag.NewFlagSet("setstatus", flag.ExitOnError)
	setStatusUser := setStatusCmd.String("user", "", "The profile's id.")
	setStatusStatus := setStatusCmd.String("status", "", "One of: member, staff, admin, owner.")

	addClassCmd := flag.NewFlagSet("addclass", flag.ExitOnError)
	addClassName := addClassCmd.String("name", "", "The class name.")
	addClassID := addClassCmd.String("id", "", "Optional class id; generated when empty.")
	addClassCreator := addClassCmd.String("creator", "", "The creating profile's id.")

	switch args[1] {
	case "setstatus":
		if err := setStatusCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setStatusUser == "" || *setStatusStatus == "" {
			setStatusCmd.Usage()
			return errHelp
		}
		userID, err := strconv.ParseInt(*setStatusUser, 10, 64)
		if err != nil {
			setStatusCmd.Usage()
			return errHelp
		}
		return cli.setStatus(userID, *setStatusStatus)
	case "addclass":
		if err := addClassCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addClassName == "" || *addClassCreator == "" {
			addClassCmd.Usage()
			return errHelp
		}
		creatorID, err := strconv.ParseInt(*addClassCreator, 10, 64)
		if err != nil {
			addClassCmd.Usage()
			return errHelp
		}
		return cli.addClass(*addClassID, *addClassName, creatorID)
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
