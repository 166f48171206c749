package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/jats"
)

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check article XML files for the structure conversion needs",
		ArgsUsage: "<file.xml>...",
		Action:    validateAction,
	}
}

func validateAction(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: oaepub validate <file.xml>...").
			Errorf("expected at least 1 file, got 0")
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	failed := 0

	for _, path := range cmd.Args().Slice() {
		article, err := jats.Load(path)
		if err == nil {
			err = article.Validate()
		}

		if err != nil {
			failed++

			fmt.Printf("%s %s: %v\n", red.Sprint("✗"), path, err)

			continue
		}

		fmt.Printf("%s %s (%s, DOI %s)\n",
			green.Sprint("✓"),
			path,
			article.JournalTitle(),
			article.DOI(),
		)
	}

	if failed > 0 {
		return oops.
			Code("ARTICLE_INVALID").
			With("failed_files", failed).
			Errorf("%d file(s) failed validation", failed)
	}

	return nil
}
