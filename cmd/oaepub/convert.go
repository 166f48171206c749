package main

import (
	"context"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/config"
	"github.com/openaccess-epub/oaepub/internal/convert"
	"github.com/openaccess-epub/oaepub/internal/ui"
)

func newConvertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert articles to EPUB",
		ArgsUsage: "<file.xml | glob | doi:10.x/y | url | collection.txt>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (overrides config)"},
			&cli.IntFlag{Name: "epub-version", Usage: "EPUB version: 2 or 3 (overrides config)"},
			&cli.BoolFlag{Name: "no-images", Usage: "Skip fetching article images"},
			&cli.BoolFlag{Name: "no-cleanup", Usage: "Keep the unpacked EPUB directory next to the .epub"},
			&cli.BoolFlag{Name: "no-validate", Usage: "Skip article validation before conversion"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Parse and resolve inputs without converting; remote inputs are still downloaded"},
			&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Usage: "Maximum parallel conversions", Value: config.DefaultParallel},
		},
		Action: convertAction,
	}
}

func convertAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: oaepub convert <input>...").
			Errorf("expected at least 1 input, got 0")
	}

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if output := cmd.String("output"); output != "" {
		cfg.Output = output
	}

	epubVersion := cmd.Int("epub-version")
	if epubVersion != 0 && epubVersion != 2 && epubVersion != 3 {
		return oops.
			Code("INVALID_ARGS").
			With("epub_version", epubVersion).
			Hint("Supported EPUB versions: 2, 3").
			Errorf("unsupported epub-version %d", epubVersion)
	}

	cachePaths, err := buildCache()
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, cachePaths)
	if err != nil {
		return err
	}

	printer := ui.NewConvertPrinter(true)

	run, runErr := convert.New(cfg, registry, cachePaths).Run(ctx, convert.Options{
		Inputs:         cmd.Args().Slice(),
		EPUBVersion:    epubVersion,
		FetchImages:    cfg.FetchImages() && !cmd.Bool("no-images"),
		MaxParallel:    cmd.Int("parallel"),
		KeepUnpacked:   cmd.Bool("no-cleanup"),
		SkipValidation: cmd.Bool("no-validate"),
		DryRun:         cmd.Bool("dry-run"),
		OnEvent:        printer.HandleEvent,
	})

	printer.PrintSummary(run)

	return runErr
}
