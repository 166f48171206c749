package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/ui"
)

func newPublishersCommand() *cli.Command {
	return &cli.Command{
		Name:  "publishers",
		Usage: "List supported publishers and their DOI prefixes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Path to config file"},
			&cli.BoolFlag{Name: "json", Usage: "Emit JSON output"},
		},
		Action: publishersAction,
	}
}

func publishersAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	cachePaths, err := buildCache()
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, cachePaths)
	if err != nil {
		return err
	}

	return ui.RenderPublisherList(registry.List(), ui.ListOptions{JSON: cmd.Bool("json")})
}
