package convert

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/openaccess-epub/oaepub/internal/cache"
	"github.com/openaccess-epub/oaepub/internal/ops"
	"github.com/openaccess-epub/oaepub/internal/publisher"
)

// imageFetcher downloads article figures, keeping a per-DOI copy in the
// image cache so repeat conversions skip the network. Parallel articles
// share one index.json, so index updates are serialized behind indexMu.
type imageFetcher struct {
	client   *resty.Client
	cacheDir string
	indexMu  sync.Mutex
}

func newImageFetcher(cacheDir string) *imageFetcher {
	return &imageFetcher{
		client:   resty.New(),
		cacheDir: cacheDir,
	}
}

// fetch places the article's images under <unpackedDir>/OPS/images and
// returns their OPS-relative paths. Images that cannot be retrieved are
// skipped, not fatal.
func (f *imageFetcher) fetch(
	ctx context.Context,
	pub publisher.Publisher,
	doi string,
	refs []ops.ImageRef,
	unpackedDir string,
) ([]string, error) {
	destDir := filepath.Join(unpackedDir, "OPS", "images")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, oops.
			Code("WRITE_FAILED").
			With("path", destDir).
			Wrapf(err, "creating images directory")
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return nil, oops.
			Code("WRITE_FAILED").
			With("path", f.cacheDir).
			Wrapf(err, "creating image cache directory")
	}

	cacheSub := filepath.Join(f.cacheDir, cacheDirName(doi))

	var fetched []string

	for _, ref := range refs {
		cachedPath := filepath.Join(cacheSub, ref.FileName)

		content, err := os.ReadFile(cachedPath)
		if err != nil {
			content = f.downloadImage(ctx, pub, doi, ref)
			if content == nil {
				continue
			}

			if err := os.MkdirAll(cacheSub, 0o755); err == nil {
				_ = os.WriteFile(cachedPath, content, 0o644)
			}
		}

		destPath := filepath.Join(destDir, ref.FileName)
		if err := os.WriteFile(destPath, content, 0o644); err != nil {
			return nil, oops.
				Code("WRITE_FAILED").
				With("path", destPath).
				Wrapf(err, "writing article image")
		}

		fetched = append(fetched, "images/"+ref.FileName)
	}

	if len(fetched) > 0 {
		files := make([]string, 0, len(fetched))
		for _, name := range fetched {
			files = append(files, strings.TrimPrefix(name, "images/"))
		}

		if err := f.recordEntry(doi, files); err != nil {
			return nil, err
		}
	}

	return fetched, nil
}

// recordEntry load-modifies-saves the shared index under the lock so one
// article's entry cannot overwrite another's.
func (f *imageFetcher) recordEntry(doi string, files []string) error {
	f.indexMu.Lock()
	defer f.indexMu.Unlock()

	index, err := cache.LoadImageIndex(f.cacheDir)
	if err != nil {
		return err
	}

	index.Set(doi, &cache.ImageEntry{
		Dir:       cacheDirName(doi),
		FetchedAt: time.Now().UTC(),
		Files:     files,
	})

	return index.Save(f.cacheDir)
}

// downloadImage returns nil when the image is unavailable: no URL template,
// network failure, or a non-success status.
func (f *imageFetcher) downloadImage(
	ctx context.Context,
	pub publisher.Publisher,
	doi string,
	ref ops.ImageRef,
) []byte {
	url, err := pub.ImageURL(doi, ref.SourceHref)
	if err != nil {
		return nil
	}

	response, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return nil
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return nil
	}

	return content
}

func cacheDirName(doi string) string {
	return strings.NewReplacer("/", "_", ":", "_").Replace(doi)
}
