// Package input classifies and resolves the arguments given to convert:
// local XML files, glob patterns, DOIs, article URLs, and collection files
// of DOI lines.
package input

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/oops"
	"resty.dev/v3"

	"github.com/openaccess-epub/oaepub/internal/publisher"
)

// Kind is the recognized shape of a single convert argument.
type Kind int

const (
	KindUnknown Kind = iota
	KindXMLFile
	KindGlob
	KindDOI
	KindURL
	KindCollection
)

// Classify decides what a raw convert argument is without touching the
// filesystem or the network.
func Classify(raw string) Kind {
	switch {
	case strings.HasPrefix(raw, "doi:"):
		return KindDOI
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		return KindURL
	}

	if strings.ContainsAny(raw, "*?[{") {
		return KindGlob
	}

	switch strings.ToLower(filepath.Ext(raw)) {
	case ".xml":
		return KindXMLFile
	case ".txt":
		return KindCollection
	}

	return KindUnknown
}

// Item is one article ready for conversion: a local XML file plus the raw
// input it came from.
type Item struct {
	Source  string
	XMLPath string
	DOI     string
}

// Resolver turns raw convert arguments into local XML files, downloading
// remote articles into downloadDir.
type Resolver struct {
	registry    *publisher.Registry
	client      *resty.Client
	downloadDir string
}

func NewResolver(registry *publisher.Registry, downloadDir string) *Resolver {
	return &Resolver{
		registry:    registry,
		client:      resty.New(),
		downloadDir: downloadDir,
	}
}

// Resolve expands one raw input into conversion items. Globs and collection
// files may yield several items; everything else yields one.
func (r *Resolver) Resolve(ctx context.Context, raw string) ([]Item, error) {
	switch Classify(raw) {
	case KindXMLFile:
		return r.resolveFile(raw)
	case KindGlob:
		return r.resolveGlob(raw)
	case KindDOI:
		item, err := r.resolveDOI(ctx, raw, strings.TrimPrefix(raw, "doi:"))
		if err != nil {
			return nil, err
		}

		return []Item{item}, nil
	case KindURL:
		xmlPath, err := r.download(ctx, raw, filenameFromURL(raw))
		if err != nil {
			return nil, err
		}

		return []Item{{Source: raw, XMLPath: xmlPath}}, nil
	case KindCollection:
		return r.resolveCollection(ctx, raw)
	default:
		return nil, oops.
			Code("INPUT_UNRECOGNIZED").
			With("input", raw).
			Hint("Inputs are .xml files, glob patterns, doi:10.x/y identifiers, http(s) URLs, or .txt collection files").
			Errorf("unrecognized input %q", raw)
	}
}

func (r *Resolver) resolveFile(raw string) ([]Item, error) {
	if _, err := os.Stat(raw); err != nil {
		return nil, oops.
			Code("INPUT_NOT_FOUND").
			With("input", raw).
			Wrapf(err, "locating article file")
	}

	return []Item{{Source: raw, XMLPath: raw}}, nil
}

func (r *Resolver) resolveGlob(raw string) ([]Item, error) {
	matches, err := doublestar.FilepathGlob(raw)
	if err != nil {
		return nil, oops.
			Code("INPUT_UNRECOGNIZED").
			With("pattern", raw).
			Wrapf(err, "expanding glob pattern")
	}

	items := make([]Item, 0, len(matches))

	for _, match := range matches {
		if strings.ToLower(filepath.Ext(match)) != ".xml" {
			continue
		}

		items = append(items, Item{Source: raw, XMLPath: match})
	}

	if len(items) == 0 {
		return nil, oops.
			Code("INPUT_NO_MATCH").
			With("pattern", raw).
			Errorf("glob pattern %q matched no XML files", raw)
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].XMLPath < items[j].XMLPath
	})

	return items, nil
}

func (r *Resolver) resolveDOI(ctx context.Context, raw, doi string) (Item, error) {
	pub, err := r.registry.Resolve(doi)
	if err != nil {
		return Item{}, err
	}

	articleURL, err := pub.ArticleURL(doi)
	if err != nil {
		return Item{}, err
	}

	xmlPath, err := r.download(ctx, articleURL, doiFileName(doi))
	if err != nil {
		return Item{}, err
	}

	return Item{Source: raw, XMLPath: xmlPath, DOI: doi}, nil
}

func (r *Resolver) resolveCollection(ctx context.Context, path string) ([]Item, error) {
	dois, err := ReadCollection(path)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(dois))

	for _, doi := range dois {
		item, err := r.resolveDOI(ctx, "doi:"+doi, doi)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ReadCollection parses a collection file: one doi: line per article, with
// blank lines and # comments ignored.
func ReadCollection(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, oops.
			Code("INPUT_NOT_FOUND").
			With("path", path).
			Wrapf(err, "opening collection file")
	}
	defer func() {
		_ = file.Close()
	}()

	var dois []string

	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		doi, found := strings.CutPrefix(line, "doi:")
		if !found || doi == "" {
			return nil, oops.
				Code("COLLECTION_INVALID").
				With("path", path).
				With("line", lineNo).
				Hint("Collection files list one doi:10.x/y identifier per line").
				Errorf("invalid collection line %d in %q", lineNo, path)
		}

		dois = append(dois, strings.TrimSpace(doi))
	}

	if err := scanner.Err(); err != nil {
		return nil, oops.
			Code("COLLECTION_INVALID").
			With("path", path).
			Wrapf(err, "reading collection file")
	}

	return dois, nil
}
