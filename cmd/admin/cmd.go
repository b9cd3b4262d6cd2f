package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/yukikurage/group-study-api/internal/database"
	"github.com/yukikurage/group-study-api/internal/services"
	"gorm.io/gorm"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *gorm.DB
	users  *services.UserService
	tasks  *services.TaskService
	logger *slog.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	w := cli.output()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  migrate                              - create or update the schema")
	fmt.Fprintln(w, "  update-task-statuses [-every 15m]    - complete ongoing tasks past their due date")
	fmt.Fprintln(w, "  deactivate-user -email EMAIL         - stop a user from signing in")
	fmt.Fprintln(w, "  activate-user -email EMAIL           - let a deactivated user sign in again")
	fmt.Fprintln(w, "  delete-user -email EMAIL             - permanently delete a user and their content")
}

func (cli *commandLine) output() io.Writer {
	if cli.out != nil {
		return cli.out
	}
	return os.Stdout
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return database.Migrate(cli.db)

	case "update-task-statuses":
		cmd := flag.NewFlagSet("update-task-statuses", flag.ContinueOnError)
		cmd.SetOutput(cli.output())
		every := cmd.Duration("every", 0, "Repeat at this interval until interrupted. Zero runs once.")
		if err := cmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.updateTaskStatuses(ctx, *every)

	case "deactivate-user", "activate-user", "delete-user":
		cmd := flag.NewFlagSet(args[1], flag.ContinueOnError)
		cmd.SetOutput(cli.output())
		email := cmd.String("email", "", "The user's email address.")
		if err := cmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.manageUser(ctx, args[1], *email)

	default:
		cli.printUsage()
		return errHelp
	}
}

// updateTaskStatuses runs the overdue sweep once, or on every tick until ctx is done.
func (cli *commandLine) updateTaskStatuses(ctx context.Context, every time.Duration) error {
	if _, err := cli.tasks.CompleteOverdue(ctx); err != nil {
		return err
	}
	if every <= 0 {
		return nil
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cli.logger.Info("task status updates stopped")
			return nil
		case <-ticker.C:
			if _, err := cli.tasks.CompleteOverdue(ctx); err != nil {
				// a failed sweep is retried on the next tick
				cli.logger.Error("task status update failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (cli *commandLine) manageUser(ctx context.Context, command, email string) error {
	user, err := cli.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	switch command {
	case "deactivate-user":
		err = cli.users.SetActive(ctx, user, false)
	case "activate-user":
		err = cli.users.SetActive(ctx, user, true)
	case "delete-user":
		err = cli.users.Purge(ctx, user.ID)
	}
	if err != nil {
		return err
	}

	cli.logger.Info("user updated", slog.String("command", command), slog.String("user_id", user.ID))
	return nil
}
