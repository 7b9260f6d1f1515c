package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"

	"github.com/starford/jotter/internal"
	"github.com/starford/jotter/internal/archive"
	"github.com/starford/jotter/internal/backend"
	"github.com/starford/jotter/internal/mcpserver"
	"github.com/starford/jotter/internal/models"
	"github.com/starford/jotter/internal/storage"
	"github.com/starford/jotter/internal/store"
	"github.com/starford/jotter/internal/tui"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Run the web server (default)",
		Action: run,
	}
}

func userFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Email of the account to act as",
		Required: required,
		Sources:  cli.EnvVars("JOTTER_USER"),
	}
}

// openAs loads the config, opens the store and resolves email. An empty
// email yields a nil user. One-shot commands log to stderr.
func openAs(ctx context.Context, cmd *cli.Command, email string) (*store.Store, *models.User, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(internal.NewLogger(os.Stderr, cfg.App.LogLevel))

	st, accounts, err := internal.OpenAccounts(cfg)
	if err != nil {
		return nil, nil, err
	}
	if email == "" {
		return st, nil, nil
	}
	u, err := accounts.Lookup(ctx, email)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("user %s: %w", email, err)
	}
	return st, u, nil
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve notes to MCP clients over stdio",
		Flags: []cli.Flag{userFlag(false)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, u, err := openAs(ctx, cmd, cmd.String("user"))
			if err != nil {
				return err
			}
			defer st.Close()
			return mcpserver.New(backend.NewLocal(st, u), version).ServeStdio()
		},
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse and edit notes in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "Base URL of a running Jotter server",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("JOTTER_SERVER"),
			},
			&cli.StringFlag{Name: "email", Usage: "Sign in with this email", Sources: cli.EnvVars("JOTTER_EMAIL")},
			&cli.StringFlag{Name: "password", Usage: "Password for --email", Sources: cli.EnvVars("JOTTER_PASSWORD")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			remote := backend.NewRemote(cmd.String("server"))
			if email := cmd.String("email"); email != "" {
				creds := models.Credentials{Email: email, Password: cmd.String("password")}
				if _, err := remote.Login(ctx, creds); err != nil {
					return fmt.Errorf("sign in: %w", err)
				}
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
			defer stop()
			return tui.Run(ctx, remote)
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("JOTTER_PASSWORD")},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					st, accounts, err := internal.OpenAccounts(cfg)
					if err != nil {
						return err
					}
					defer st.Close()

					u, err := accounts.Register(ctx, models.Credentials{
						Email:    cmd.String("email"),
						Password: cmd.String("password"),
					})
					if err != nil {
						return err
					}
					color.Green("✓ Registered %s", u.Email)
					fmt.Printf("%s %s\n", color.New(color.Faint).Sprint("ID:"), u.ID)
					return nil
				},
			},
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write your notes as Markdown files",
		Flags: []cli.Flag{
			userFlag(true),
			&cli.StringFlag{Name: "dir", Usage: "Destination directory", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, u, err := openAs(ctx, cmd, cmd.String("user"))
			if err != nil {
				return err
			}
			defer st.Close()

			dst, err := storage.NewFS(cmd.String("dir"))
			if err != nil {
				return err
			}
			paths, err := archive.Export(ctx, backend.NewLocal(st, u), dst)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Printf("  %s\n", p)
			}
			color.Green("✓ Exported %d notes to %s", len(paths), dst.Root())
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Create notes from Markdown files",
		Flags: []cli.Flag{
			userFlag(true),
			&cli.StringFlag{Name: "dir", Usage: "Source directory", Required: true},
			&cli.StringFlag{Name: "pattern", Usage: "Glob of files to import", Value: archive.DefaultPattern},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			st, u, err := openAs(ctx, cmd, cmd.String("user"))
			if err != nil {
				return err
			}
			defer st.Close()

			src, err := storage.NewFS(cmd.String("dir"))
			if err != nil {
				return err
			}
			report, err := archive.Import(ctx, backend.NewLocal(st, u), src, cmd.String("pattern"))
			if err != nil {
				return err
			}
			for _, n := range report.Imported {
				fmt.Printf("  %s %s\n", color.GreenString("+"), n.Title)
			}
			for _, s := range report.Skipped {
				fmt.Printf("  %s %s: %v\n", color.YellowString("!"), s.Path, s.Err)
			}
			if len(report.Skipped) > 0 {
				color.Yellow("⚠ Imported %d notes, skipped %d files", len(report.Imported), len(report.Skipped))
				return errors.New("some files were not imported")
			}
			color.Green("✓ Imported %d notes", len(report.Imported))
			return nil
		},
	}
}
