package main

import (
	"context"
	"fmt"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/collect"
)

func newCollectCommand() *cli.Command {
	return &cli.Command{
		Name:      "collect",
		Usage:     "Scrape a PLoS issue page into a collection file of DOIs",
		ArgsUsage: "<issue-url>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Directory for collection files",
				Value:   "collections",
			},
		},
		Action: collectAction,
	}
}

func collectAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return oops.
			Code("INVALID_ARGS").
			Hint("Usage: oaepub collect <issue-url>...").
			Errorf("expected at least 1 issue URL, got 0")
	}

	collector := collect.New(cmd.String("out"))

	for _, issueURL := range cmd.Args().Slice() {
		path, count, err := collector.CollectIssue(ctx, issueURL)
		if err != nil {
			return err
		}

		fmt.Printf("wrote %s (%d article(s))\n", path, count)
	}

	return nil
}
