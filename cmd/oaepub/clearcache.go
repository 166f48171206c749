package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/cache"
)

func newClearCacheCommand() *cli.Command {
	return &cli.Command{
		Name:      "clearcache",
		Usage:     "Clear cached data, or show the cache layout with 'manual'",
		ArgsUsage: "[all|images|logs|css|manual]",
		Action:    clearCacheAction,
	}
}

func clearCacheAction(_ context.Context, cmd *cli.Command) error {
	// Destructive targets must be named explicitly; a bare clearcache only
	// prints the cache layout.
	raw := cmd.Args().First()
	if raw == "" {
		raw = string(cache.TargetManual)
	}

	target, err := cache.ParseTarget(raw)
	if err != nil {
		return err
	}

	root, err := cache.Location()
	if err != nil {
		return err
	}

	paths, err := cache.Clear(root, target)
	if err != nil {
		return err
	}

	if target == cache.TargetManual {
		fmt.Println("oaepub keeps its cache at the following locations:")

		for _, path := range paths {
			fmt.Printf("  %s\n", path)
		}

		return nil
	}

	for _, path := range paths {
		fmt.Printf("removed %s\n", path)
	}

	return nil
}
