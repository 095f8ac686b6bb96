package main

import (
	"context"
	"fmt"
	"os"

	"lokomotiv_server_go/config"
	"lokomotiv_server_go/logging"
)

const usage = `usage: lokomotiv_server_go [serve|migrate|create-admin] [flags]

  serve         run the REST API (default)
  migrate       apply database migrations and exit
  create-admin  create an administrator (-u username, -name full name)
`

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.LoadConfig(args, os.Getenv)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.NewJSON(os.Stdout, cfg.LogLevel)

	switch cmd {
	case "serve", "migrate", "create-admin":
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	switch cmd {
	case "migrate":
		logger.Info(ctx, "migrations applied", "driver", cfg.DatabaseDriver)
		return nil
	case "create-admin":
		_, err := app.CreateAdmin(ctx, args, os.Stdout)
		return err
	default:
		return app.Serve(ctx)
	}
}
