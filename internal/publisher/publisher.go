package publisher

import (
	"sort"
	"strings"

	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/samber/oops"
)

// Publisher specializes generic article-to-EPUB conversion for one
// publisher's document conventions.
type Publisher interface {
	// Name is the short name used in doi_map records and plugin files.
	Name() string
	// DOIPrefix identifies the publisher, e.g. "10.1371".
	DOIPrefix() string
	// ArticleURL resolves a DOI to the URL of the article's XML.
	ArticleURL(doi string) (string, error)
	// ImageURL resolves a figure's xlink:href to a fetchable URL.
	ImageURL(doi, href string) (string, error)
	// AdjustMeta applies publisher-specific corrections to parsed metadata.
	AdjustMeta(article *jats.Article)
}

// Source records where a registry entry came from, for the publishers
// listing.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourcePlugin  Source = "plugin"
)

type entry struct {
	publisher Publisher
	source    Source
}

// Registry maps publisher short names to implementations and resolves DOIs
// through the doi_map.
type Registry struct {
	entries map[string]entry
	doiMap  DOIMap
}

func NewRegistry() *Registry {
	return &Registry{
		entries: map[string]entry{},
		doiMap:  DOIMap{},
	}
}

// Builtin returns a registry with the compiled-in publishers.
func Builtin() *Registry {
	registry := NewRegistry()
	registry.Register(newPLoS(), SourceBuiltin)
	registry.Register(newFrontiers(), SourceBuiltin)

	return registry
}

// Register adds a publisher. A later registration under the same name
// replaces the earlier one, which is how plugin configs override builtins.
func (r *Registry) Register(pub Publisher, source Source) {
	r.entries[pub.Name()] = entry{publisher: pub, source: source}
}

func (r *Registry) SetDOIMap(doiMap DOIMap) {
	r.doiMap = doiMap
}

func (r *Registry) Get(name string) (Publisher, bool) {
	e, ok := r.entries[name]
	return e.publisher, ok
}

// Listing describes one registry entry for display.
type Listing struct {
	Name      string `json:"name"`
	DOIPrefix string `json:"doi_prefix"`
	Source    Source `json:"source"`
	Mapped    bool   `json:"mapped"`
}

// List returns the registry content sorted by name.
func (r *Registry) List() []Listing {
	listings := make([]Listing, 0, len(r.entries))
	for name, e := range r.entries {
		listings = append(listings, Listing{
			Name:      name,
			DOIPrefix: e.publisher.DOIPrefix(),
			Source:    e.source,
			Mapped:    r.doiMap.HasName(name),
		})
	}

	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Name < listings[j].Name
	})

	return listings
}

// Resolve finds the publisher responsible for a DOI, consulting the doi_map
// first and falling back to the registered prefixes.
func (r *Registry) Resolve(doi string) (Publisher, error) {
	prefix := DOIPrefix(doi)
	if prefix == "" {
		return nil, oops.
			Code("DOI_INVALID").
			With("doi", doi).
			Hint("DOIs look like 10.1371/journal.pone.0012345").
			Errorf("cannot extract a prefix from DOI %q", doi)
	}

	if name, ok := r.doiMap[prefix]; ok {
		if pub, found := r.Get(name); found {
			return pub, nil
		}

		return nil, oops.
			Code("PUBLISHER_UNKNOWN").
			With("doi", doi).
			With("prefix", prefix).
			With("name", name).
			Hint("The doi_map names a publisher with no registered support; add a plugin config under publisher_plugins/").
			Errorf("doi_map maps %q to unsupported publisher %q", prefix, name)
	}

	for _, e := range r.entries {
		if e.publisher.DOIPrefix() == prefix {
			return e.publisher, nil
		}
	}

	return nil, oops.
		Code("PUBLISHER_UNKNOWN").
		With("doi", doi).
		With("prefix", prefix).
		Hint("Add the prefix to the doi_map in the cache directory, see 'oaepub clearcache manual'").
		Errorf("no publisher registered for DOI prefix %q", prefix)
}

// DOIPrefix extracts the registrant prefix from a DOI, the part before the
// first slash.
func DOIPrefix(doi string) string {
	doi = strings.TrimSpace(strings.TrimPrefix(strings.ToLower(doi), "doi:"))
	prefix, _, found := strings.Cut(doi, "/")
	if !found || !strings.HasPrefix(prefix, "10.") {
		return ""
	}

	return prefix
}
