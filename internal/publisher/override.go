package publisher

import "strings"

// overridden replaces a publisher's URL templates with ones from the user
// config while keeping its name, prefix, and metadata adjustments.
type overridden struct {
	Publisher

	articleURL string
	imageURL   string
}

// WithOverrides wraps base so non-empty URL templates take precedence over
// its own. Templates use {doi} and {href} placeholders.
func WithOverrides(base Publisher, articleURL, imageURL string) Publisher {
	if articleURL == "" && imageURL == "" {
		return base
	}

	return &overridden{
		Publisher:  base,
		articleURL: articleURL,
		imageURL:   imageURL,
	}
}

func (o *overridden) ArticleURL(doi string) (string, error) {
	if o.articleURL == "" {
		return o.Publisher.ArticleURL(doi)
	}

	return strings.ReplaceAll(o.articleURL, "{doi}", doi), nil
}

func (o *overridden) ImageURL(doi, href string) (string, error) {
	if o.imageURL == "" {
		return o.Publisher.ImageURL(doi, href)
	}

	replaced := strings.ReplaceAll(o.imageURL, "{href}", href)

	return strings.ReplaceAll(replaced, "{doi}", doi), nil
}
