package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/aif/internal/logger"
	"github.com/samcharles93/aif/internal/ops"
	"github.com/samcharles93/aif/pkg/aif"
)

func brightenCmd() *cli.Command {
	return &cli.Command{
		Name:      "brighten",
		Usage:     "Brighten or darken an image by -100..100 percent",
		ArgsUsage: "<amount> <in-file> <out-file>",
		// Negative amounts would otherwise be parsed as flags.
		SkipFlagParsing: true,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 3 {
				return usageError(cmd)
			}
			amount, err := strconv.Atoi(args.Get(0))
			if err != nil {
				return cli.Exit(fmt.Sprintf("Amount must be an integer, got '%s'", args.Get(0)), 1)
			}
			return runOperation(ctx, ops.OpBrighten, args.Get(1), args.Get(2), ops.Params{Amount: amount})
		},
	}
}

func convertColorCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert-color",
		Usage:     "Convert an image to another pixel format (rgb8, gray8)",
		ArgsUsage: "<color-format> <in-file> <out-file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() < 3 {
				return usageError(cmd)
			}
			format, err := aif.ParsePixelFormat(args.Get(0))
			if err != nil {
				return exitError(args.Get(1), err)
			}
			return runOperation(ctx, ops.OpConvertColor, args.Get(1), args.Get(2), ops.Params{Format: format})
		},
	}
}

func decompressCmd() *cli.Command {
	return &cli.Command{
		Name:      "decompress",
		Usage:     "Write an uncompressed copy of an image",
		ArgsUsage: "<in-file> <out-file>",
		Action:    twoFileAction(ops.OpDecompress),
	}
}

func compressCmd() *cli.Command {
	return &cli.Command{
		Name:      "compress",
		Usage:     "Write a run-length encoded copy of an image",
		ArgsUsage: "<in-file> <out-file>",
		Action:    twoFileAction(ops.OpCompress),
	}
}

func twoFileAction(op ops.Operation) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		args := cmd.Args()
		if args.Len() < 2 {
			return usageError(cmd)
		}
		return runOperation(ctx, op, args.Get(0), args.Get(1), ops.Params{})
	}
}

func runOperation(ctx context.Context, op ops.Operation, in, out string, p ops.Params) error {
	log := logger.FromContext(ctx)
	res, err := ops.NewRunner(log, nil).Run(ctx, op, in, out, p)
	if err != nil {
		return exitError(in, err)
	}
	log.Info(op.String()+" done", "in", in, "out", out, "bytes", res.OutBytes)
	return nil
}

func usageError(cmd *cli.Command) error {
	return cli.Exit(fmt.Sprintf("Usage: aif-tools %s %s", cmd.Name, cmd.ArgsUsage), 1)
}
