package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/oops"
	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/config"
	"github.com/openaccess-epub/oaepub/internal/publisher"
)

func newInitCommand() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create a starter oaepub.toml and seed the cache",
		Action: initAction,
	}
}

func initAction(_ context.Context, cmd *cli.Command) error {
	_ = cmd

	workDir, err := os.Getwd()
	if err != nil {
		return oops.Wrapf(err, "resolving working directory")
	}

	configPath, err := config.WriteStarter(workDir)
	if err != nil {
		return err
	}

	cachePaths, err := buildCache()
	if err != nil {
		return err
	}

	// Seed the doi_map so the cache file exists for hand editing.
	if _, statErr := os.Stat(cachePaths.DOIMapFile); os.IsNotExist(statErr) {
		if err := publisher.DefaultDOIMap().Save(cachePaths.DOIMapFile); err != nil {
			return err
		}
	}

	fmt.Printf("wrote %s\n", configPath)
	fmt.Printf("cache ready at %s\n", cachePaths.Root)

	return nil
}
