package main

import (
	"context"
	"fmt"

	"github.com/almflow/workflows/pkg/cmd"
	"github.com/almflow/workflows/pkg/config"
	"github.com/almflow/workflows/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func SeedCommand() *cli.Command {
	return &cli.Command{
		Name:      "seed",
		Usage:     "Load standard types, projects, users and groups from a YAML file",
		ArgsUsage: "<seed.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL whose cached standard types should be dropped after seeding",
				Sources: cli.EnvVars("REDIS_URL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return cli.Exit("exactly one seed file is required", 1)
			}

			databaseURL, err := requireDatabaseURL(command)
			if err != nil {
				return err
			}

			logger := log.WithModule("seed")

			seed, err := config.LoadSeed(command.Args().First())
			if err != nil {
				return err
			}

			p, err := cmd.NewPersistence(ctx, logger, databaseURL)
			if err != nil {
				return err
			}

			defer func() {
				err := p.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			err = cmd.ApplySeed(ctx, p, seed)
			if err != nil {
				return fmt.Errorf("failed to apply seed: %w", err)
			}

			err = cmd.InvalidateMetadataCache(ctx, logger, command.String("redis-url"))
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "Seed applied",
				"artifact_types", len(seed.StandardTypes.ArtifactTypes),
				"property_types", len(seed.StandardTypes.PropertyTypes),
				"projects", len(seed.Projects),
				"users", len(seed.Users),
				"groups", len(seed.Groups),
			)

			return nil
		},
	}
}
