package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/openaccess-epub/oaepub/internal/cache"
	"github.com/openaccess-epub/oaepub/internal/config"
	"github.com/openaccess-epub/oaepub/internal/publisher"
)

var (
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	version = "dev"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	commit = "unknown"
	//nolint:gochecknoglobals // Build metadata is injected at build time with ldflags.
	buildTime = "unknown"
)

func main() {
	if err := run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	return newRootCommand().Run(context.Background(), args)
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "oaepub",
		Usage:   "Convert Open Access journal articles to EPUB",
		Version: versionString(),
		Commands: []*cli.Command{
			newConvertCommand(),
			newValidateCommand(),
			newPublishersCommand(),
			newCollectCommand(),
			newClearCacheCommand(),
			newInitCommand(),
		},
	}
}

func versionString() string {
	return fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildTime)
}

// loadConfig resolves the config for a command: an explicit --config path,
// the nearest oaepub.toml, or built-in defaults.
func loadConfig(configFlag string) (*config.Config, error) {
	return config.LoadOrDefault(configFlag)
}

// buildCache locates and creates the cache tree used for images, stylesheets,
// publisher plugins, and the doi_map file.
func buildCache() (cache.Paths, error) {
	root, err := cache.Location()
	if err != nil {
		return cache.Paths{}, err
	}

	return cache.Build(root)
}

// buildRegistry assembles the publisher registry: builtins, plugin files
// from the cache, the doi_map, and URL overrides from the config.
func buildRegistry(cfg *config.Config, cachePaths cache.Paths) (*publisher.Registry, error) {
	registry := publisher.Builtin()

	if err := publisher.LoadPlugins(registry, cachePaths.Plugins); err != nil {
		return nil, err
	}

	doiMap, err := publisher.LoadDOIMap(cachePaths.DOIMapFile)
	if err != nil {
		return nil, err
	}

	if len(doiMap) == 0 {
		doiMap = publisher.DefaultDOIMap()
	}

	registry.SetDOIMap(doiMap)

	for _, listing := range registry.List() {
		override, ok := cfg.Publishers[listing.Name]
		if !ok || (override.ArticleURL == "" && override.ImageURL == "") {
			continue
		}

		base, _ := registry.Get(listing.Name)
		registry.Register(
			publisher.WithOverrides(base, override.ArticleURL, override.ImageURL),
			listing.Source,
		)
	}

	return registry, nil
}
