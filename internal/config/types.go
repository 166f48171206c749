package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

const (
	DefaultOutput      = ".oaepub-output"
	DefaultEPUBVersion = 2
	DefaultParallel    = 3
)

type Config struct {
	Output      string                       `koanf:"output"       validate:"omitempty"`
	EPUBVersion int                          `koanf:"epub_version" validate:"omitempty,oneof=2 3"`
	DefaultCSS  string                       `koanf:"default_css"`
	ImageFetch  *bool                        `koanf:"image_fetch"`
	Publishers  map[string]PublisherOverride `koanf:"publishers"   validate:"omitempty,dive"`
	ConfigDir   string                       `koanf:"-"`
}

// PublisherOverride tunes one publisher's conversion without a plugin file.
type PublisherOverride struct {
	CSS        string `koanf:"css"`
	ArticleURL string `koanf:"article_url" validate:"omitempty,contains={doi}"`
	ImageURL   string `koanf:"image_url"   validate:"omitempty,contains={href}"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func (c *Config) ApplyDefaults() {
	if c.Output == "" {
		c.Output = DefaultOutput
	}

	if c.EPUBVersion == 0 {
		c.EPUBVersion = DefaultEPUBVersion
	}

	if c.ImageFetch == nil {
		fetch := true
		c.ImageFetch = &fetch
	}
}

func (c *Config) FetchImages() bool {
	return c.ImageFetch == nil || *c.ImageFetch
}

func (c *Config) Validate() error {
	v := newValidator()

	if valErr := v.Struct(c); valErr != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(valErr, &validationErrors) {
			return oops.
				Code("CONFIG_INVALID").
				Wrapf(valErr, "validating config")
		}

		for _, fe := range validationErrors {
			return mapValidationError(fe)
		}
	}

	return nil
}

func mapValidationError(fe validator.FieldError) error {
	field := strings.ToLower(fe.Field())

	switch {
	case fe.Tag() == "oneof" && field == "epubversion":
		return oops.
			Code("CONFIG_INVALID").
			With("field", "epub_version").
			With("value", fe.Value()).
			Hint("Supported EPUB versions: 2, 3").
			Errorf("unsupported epub_version %v", fe.Value())

	case fe.Tag() == "contains":
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			Hint("URL templates need {doi} (article_url) or {href} (image_url) placeholders").
			Errorf("invalid URL template in field %q", field)

	default:
		return oops.
			Code("CONFIG_INVALID").
			With("field", field).
			With("tag", fe.Tag()).
			Errorf("validation failed for config field %q", field)
	}
}

// OutputDir resolves the output directory, absolute or relative to the
// config file location.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}

	return filepath.Join(c.ConfigDir, c.Output)
}

// CSSFor picks the stylesheet override for a publisher, falling back to the
// global default_css, then to the embedded stylesheet (empty string).
func (c *Config) CSSFor(publisherName string) string {
	if override, ok := c.Publishers[publisherName]; ok && override.CSS != "" {
		return c.resolvePath(override.CSS)
	}

	if c.DefaultCSS != "" {
		return c.resolvePath(c.DefaultCSS)
	}

	return ""
}

func (c *Config) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(c.ConfigDir, path)
}
