// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/igorteleutsa/taskSystem/internal/config"
	"github.com/igorteleutsa/taskSystem/internal/core"
	"github.com/igorteleutsa/taskSystem/internal/migrate"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	command := flag.String("command", "up", "migration command: up, status or down")
	target := flag.Int64("target", 0, "version to roll back to with -command=down")
	flag.Parse()

	if err := run(*configPath, *command, *target); err != nil {
		slog.Error("migration error", "error", err)
		os.Exit(1)
	}
}

func run(configPath, command string, target int64) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()

	runner, err := migrate.New(db.DB.DB, logger)
	if err != nil {
		return err
	}

	switch command {
	case "up":
		return runner.Up(ctx)
	case "status":
		return runner.Status(ctx)
	case "down":
		return runner.Down(ctx, target)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
