package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/jotter/internal"
	pkgconfig "github.com/starford/jotter/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithConfigPath(cmd.String("config")),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "jotter",
		Usage:   "Notes with private drafts and a public feed",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			tuiCommand(),
			userCommand(),
			exportCommand(),
			importCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
