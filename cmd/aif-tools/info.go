package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/aif/internal/logger"
	"github.com/samcharles93/aif/internal/ops"
	"github.com/samcharles93/aif/internal/report"
	"github.com/samcharles93/aif/pkg/aif"
)

func infoCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "info",
		Usage:     "Print header fields and validation results for AIF files",
		ArgsUsage: "<file> [<file>...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print reports as a JSON array",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				return cli.Exit("No input files provided", 1)
			}
			if cfg.InfoFormat == "json" && !cmd.IsSet("json") {
				asJSON = true
			}

			out := cmd.Root().Writer
			runner := ops.NewRunner(logger.FromContext(ctx), nil)
			var (
				infos []report.Info
				done  int
			)
			err := runner.Info(ctx, paths, func(path string, rep aif.Report) error {
				if asJSON {
					infos = append(infos, report.New(path, rep))
				} else if err := report.WriteText(out, path, rep); err != nil {
					return err
				}
				done++
				return nil
			})
			if err != nil {
				return exitError(paths[min(done, len(paths)-1)], err)
			}
			if asJSON {
				return report.WriteJSON(out, infos)
			}
			return nil
		},
	}
}
