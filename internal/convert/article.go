package convert

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"

	"github.com/openaccess-epub/oaepub/internal/epub"
	"github.com/openaccess-epub/oaepub/internal/input"
	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/openaccess-epub/oaepub/internal/ops"
	"github.com/openaccess-epub/oaepub/internal/publisher"
)

func (c *Converter) convertArticle(
	ctx context.Context,
	item input.Item,
	opts Options,
) (*ArticleResult, error) {
	article, err := jats.Load(item.XMLPath)
	if err != nil {
		return nil, err
	}

	if !opts.SkipValidation {
		if err := article.Validate(); err != nil {
			return nil, err
		}
	}

	doi := item.DOI
	if doi == "" {
		doi = article.DOI()
	}

	result := &ArticleResult{Input: item.Source, DOI: doi}

	// Without a resolvable publisher the article still converts; only
	// remote image fetching is off the table.
	var pub publisher.Publisher
	if doi != "" {
		if resolved, resolveErr := c.registry.Resolve(doi); resolveErr == nil {
			pub = resolved
			pub.AdjustMeta(article)
			result.Publisher = pub.Name()
		}
	}

	unpackedDir := filepath.Join(c.cfg.OutputDir(), articleName(item.XMLPath))

	// A dry run stops once the article has been parsed, validated, and its
	// publisher resolved; nothing is written.
	if opts.DryRun {
		result.EPUBPath = unpackedDir + ".epub"

		return result, nil
	}

	if err := os.RemoveAll(unpackedDir); err != nil {
		return nil, oops.
			Code("WRITE_FAILED").
			With("path", unpackedDir).
			Wrapf(err, "clearing stale build directory")
	}

	if err := epub.BuildSkeleton(unpackedDir, c.cfg.CSSFor(result.Publisher)); err != nil {
		return nil, err
	}

	opsResult, err := ops.Generate(unpackedDir, article)
	if err != nil {
		return nil, err
	}

	var images []string

	switch {
	case len(opsResult.Images) == 0:
	case !opts.FetchImages || pub == nil:
		result.ImagesSkipped = true
	default:
		images, err = c.fetcher.fetch(ctx, pub, doi, opsResult.Images, unpackedDir)
		if err != nil {
			return nil, err
		}

		result.Images = len(images)
		result.ImagesSkipped = len(images) < len(opsResult.Images)
	}

	info := epub.PackageInfo{
		Article:   article,
		Version:   c.epubVersion(opts),
		HasTables: opsResult.HasTables,
		Images:    images,
	}

	if err := epub.WriteOPF(unpackedDir, info); err != nil {
		return nil, err
	}

	if info.Version >= 3 {
		err = epub.WriteNav(unpackedDir, info)
	} else {
		err = epub.WriteNCX(unpackedDir, info)
	}

	if err != nil {
		return nil, err
	}

	epubPath, err := epub.Pack(unpackedDir)
	if err != nil {
		return nil, err
	}

	result.EPUBPath = epubPath

	if stat, statErr := os.Stat(epubPath); statErr == nil {
		result.Size = stat.Size()
	}

	if !opts.KeepUnpacked {
		if err := os.RemoveAll(unpackedDir); err != nil {
			return nil, oops.
				Code("WRITE_FAILED").
				With("path", unpackedDir).
				Wrapf(err, "removing build directory")
		}
	}

	return result, nil
}

// articleName derives the EPUB base name from the article's XML filename.
func articleName(xmlPath string) string {
	base := filepath.Base(xmlPath)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
