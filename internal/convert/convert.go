// Package convert drives the article-to-EPUB pipeline: resolve inputs,
// parse the JATS XML, write the OPS documents, fetch images, and pack the
// finished EPUB.
package convert

import (
	"context"
	"os"
	"path/filepath"
	stdsync "sync"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/openaccess-epub/oaepub/internal/cache"
	"github.com/openaccess-epub/oaepub/internal/config"
	"github.com/openaccess-epub/oaepub/internal/input"
	"github.com/openaccess-epub/oaepub/internal/publisher"
)

// EventKind identifies a point in an article's conversion lifecycle.
type EventKind int

const (
	EventBatchStart EventKind = iota
	EventArticleStart
	EventArticleDone
)

// Event is delivered to Options.OnEvent as the batch resolves and articles
// start and finish.
type Event struct {
	Kind   EventKind
	Input  string
	Total  int
	Result *ArticleResult
	Err    error
}

// Options controls a conversion run.
type Options struct {
	Inputs         []string
	EPUBVersion    int
	FetchImages    bool
	MaxParallel    int
	KeepUnpacked   bool
	SkipValidation bool
	DryRun         bool
	OnEvent        func(Event)
}

// ArticleResult describes one successfully converted article.
type ArticleResult struct {
	Input         string
	DOI           string
	Publisher     string
	EPUBPath      string
	Size          int64
	Duration      time.Duration
	Images        int
	ImagesSkipped bool
}

// RunResult aggregates a whole conversion run.
type RunResult struct {
	Articles  int
	Succeeded int
	Failed    int
}

type runState struct {
	item   input.Item
	result *ArticleResult
	err    error
}

// Converter converts resolved inputs into EPUB files under the configured
// output directory.
type Converter struct {
	cfg      *config.Config
	registry *publisher.Registry
	fetcher  *imageFetcher
}

func New(cfg *config.Config, registry *publisher.Registry, cachePaths cache.Paths) *Converter {
	return &Converter{
		cfg:      cfg,
		registry: registry,
		fetcher:  newImageFetcher(cachePaths.Images),
	}
}

// Run converts every input. Individual failures, resolution included, are
// reported per article and summarized in the returned error; they do not
// abort the batch.
func (c *Converter) Run(ctx context.Context, opts Options) (*RunResult, error) {
	if c.cfg == nil {
		return nil, oops.
			Code("CONFIG_INVALID").
			Errorf("config is required")
	}

	outputDir := c.cfg.OutputDir()
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, oops.
			Code("WRITE_FAILED").
			With("path", outputDir).
			Wrapf(err, "creating output directory")
	}

	resolver := input.NewResolver(c.registry, filepath.Join(outputDir, "downloads"))

	// An input that fails to resolve becomes a failed entry; the rest of
	// the batch still converts.
	var (
		items      []input.Item
		unresolved []runState
	)

	for _, raw := range opts.Inputs {
		resolved, err := resolver.Resolve(ctx, raw)
		if err != nil {
			unresolved = append(unresolved, runState{item: input.Item{Source: raw}, err: err})

			continue
		}

		items = append(items, resolved...)
	}

	emit(opts.OnEvent, Event{Kind: EventBatchStart, Total: len(items) + len(unresolved)})

	for _, state := range unresolved {
		emit(opts.OnEvent, Event{Kind: EventArticleDone, Input: state.item.Source, Err: state.err})
	}

	maxParallel := opts.MaxParallel
	if maxParallel <= 0 {
		maxParallel = config.DefaultParallel
	}

	states := make([]runState, len(items))

	var statesMu stdsync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallel)

	for i, item := range items {
		group.Go(func() error {
			emit(opts.OnEvent, Event{Kind: EventArticleStart, Input: item.Source})

			started := time.Now()

			result, err := c.convertArticle(groupCtx, item, opts)
			if result != nil {
				result.Duration = time.Since(started)
			}

			statesMu.Lock()
			states[i] = runState{item: item, result: result, err: err}
			statesMu.Unlock()

			emit(opts.OnEvent, Event{
				Kind:   EventArticleDone,
				Input:  item.Source,
				Result: result,
				Err:    err,
			})

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, oops.Wrapf(err, "waiting for conversion workers")
	}

	states = append(unresolved, states...)

	run := &RunResult{Articles: len(states)}
	report := newReport()

	for _, state := range states {
		report.add(state)

		if state.err != nil {
			run.Failed++

			continue
		}

		run.Succeeded++
	}

	if !opts.DryRun {
		if err := report.Save(outputDir); err != nil {
			return nil, err
		}
	}

	if run.Failed > 0 {
		return run, oops.
			Code("CONVERT_FAILED").
			With("failed_articles", run.Failed).
			Errorf("%d article(s) failed to convert", run.Failed)
	}

	return run, nil
}

func (c *Converter) epubVersion(opts Options) int {
	if opts.EPUBVersion != 0 {
		return opts.EPUBVersion
	}

	return c.cfg.EPUBVersion
}

func emit(onEvent func(Event), e Event) {
	if onEvent != nil {
		onEvent(e)
	}
}
