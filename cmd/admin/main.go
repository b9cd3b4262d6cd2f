package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yukikurage/group-study-api/internal/authz"
	"github.com/yukikurage/group-study-api/internal/config"
	"github.com/yukikurage/group-study-api/internal/database"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/services"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo := repository.NewUserRepository(db)
	cli := &commandLine{
		db:     db,
		users:  services.NewUserService(userRepo),
		tasks:  services.NewTaskService(repository.NewTaskRepository(db), authz.NewAuthorizer(repository.NewMembershipRepository(db)), logger),
		logger: logger,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			logger.Error("command failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}
