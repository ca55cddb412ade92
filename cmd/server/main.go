// Package main is the entry point for the trivia league server.
//
// main stays minimal: parse the command line, load configuration, build a
// logger, and hand over to internal/server or internal/seed.
//
//	trivia-league [--config config.yaml] serve
//	trivia-league [--config config.yaml] seed --users 50 --seed 42
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/sakif/trivia-league/internal/auth"
	"github.com/sakif/trivia-league/internal/config"
	sqliteRepo "github.com/sakif/trivia-league/internal/repository/sqlite"
	"github.com/sakif/trivia-league/internal/seed"
	"github.com/sakif/trivia-league/internal/server"
	"github.com/sakif/trivia-league/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "trivia-league",
		Usage: "trivia leaderboard and follow-graph API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultFile,
				Usage:   "path to an optional YAML config file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			seedCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server until SIGINT or SIGTERM",
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg, logger)
			if err != nil {
				logger.Error("failed to create server", slog.String("error", err.Error()))
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				logger.Error("server error", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "insert fake players with random points and follow edges",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "users", Aliases: []string{"n"}, Value: 50, Usage: "number of players to create"},
			&cli.Int64Flag{Name: "seed", Value: 1, Usage: "random seed; the same seed yields the same players"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("creating database directory: %w", err)
			}
			db, err := sqliteRepo.New(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			gen := seed.NewGenerator(
				c.Int64("seed"),
				db,
				service.NewFollowService(db, nil, logger),
				auth.NewPasswordService(),
				logger,
			)
			res, err := gen.Seed(c.Context, c.Int("users"))
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "created %d players and %d follow edges in %s (password %q)\n",
				len(res.Players), res.Edges, cfg.DBPath, seed.DefaultPassword)
			return nil
		},
	}
}

// setup loads configuration and builds the process logger.
func setup(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

