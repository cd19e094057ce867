package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/kijani/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS...]                        - run database migrations (goose commands)")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create a user; the password is prompted next")
	fmt.Println("  seedtree -student USERNAME|EMAIL -name NAME [-course COURSE] - seed a growth tree with an empty path")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The new user's username.")
	addUserEmail := addUserCmd.String("email", "", "The new user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant all admin roles.")

	seedTreeCmd := flag.NewFlagSet("seedtree", flag.ExitOnError)
	seedTreeStudent := seedTreeCmd.String("student", "", "The student's username or email.")
	seedTreeName := seedTreeCmd.String("name", "", "The growth tree's name.")
	seedTreeCourse := seedTreeCmd.String("course", "general", "The growth tree's course type.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, string(pwd), *addUserAdmin)
	case "seedtree":
		if err := seedTreeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *seedTreeStudent == "" || *seedTreeName == "" {
			seedTreeCmd.Usage()
			return errHelp
		}
		return cli.seedTree(*seedTreeStudent, *seedTreeName, *seedTreeCourse)
	default:
		cli.printUsage()
		return errHelp
	}
}
