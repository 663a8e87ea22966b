package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/almflow/workflows/pkg/cmd"
	"github.com/almflow/workflows/pkg/log"
	"github.com/almflow/workflows/pkg/models"
	"github.com/almflow/workflows/pkg/persistence"
	"github.com/almflow/workflows/pkg/services"
	"github.com/almflow/workflows/pkg/validation"
	cli "github.com/urfave/cli/v3"
)

const findingsExitCode = 2

func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate a workflow definition file without storing it",
		ArgsUsage: "<definition.json>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "update",
				Usage: "Treat ids in the definition as authoritative",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() != 1 {
				return cli.Exit("exactly one definition file is required", 1)
			}

			databaseURL, err := requireDatabaseURL(command)
			if err != nil {
				return err
			}

			logger := log.WithModule("validate")

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

			mode := validation.ModeCreate
			if command.Bool("update") {
				mode = validation.ModeUpdate
			}

			return validateFile(ctx, p, command.Args().First(), mode, command.Root().Writer)
		},
	}
}

func validateFile(
	ctx context.Context,
	p persistence.Persistence,
	path string,
	mode validation.Mode,
	out io.Writer,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read definition: %w", err)
	}

	var definition models.ImportWorkflow

	err = json.Unmarshal(data, &definition)
	if err != nil {
		return fmt.Errorf("failed to decode definition: %w", err)
	}

	result, err := services.NewWorkflow(p).Validate(ctx, &definition, mode)
	if err != nil {
		return err
	}

	if !result.HasErrors() {
		_, _ = fmt.Fprintf(out, "%s: valid\n", definition.Name)

		return nil
	}

	for _, report := range result.Report() {
		_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", report.Code, report.Element, report.Description)
	}

	return cli.Exit(fmt.Sprintf("%d validation errors", len(result.Errors())), findingsExitCode)
}
