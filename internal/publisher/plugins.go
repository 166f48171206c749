package publisher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/samber/oops"
)

// PluginConfig is the on-disk shape of a publisher plugin. Plugins live as
// TOML files under the cache's publisher_plugins directory; each file adds
// support for one publisher, or overrides a builtin with the same name.
type PluginConfig struct {
	Name       string `koanf:"name"        validate:"required"`
	DOIPrefix  string `koanf:"doi_prefix"  validate:"required,startswith=10."`
	ArticleURL string `koanf:"article_url" validate:"required,contains={doi}"`
	ImageURL   string `koanf:"image_url"   validate:"omitempty,contains={href}"`
	CSS        string `koanf:"css"`
}

// LoadPlugins reads every *.toml file in the plugins directory into the
// registry. A missing directory is fine; a malformed plugin file is not.
func LoadPlugins(registry *Registry, pluginsDir string) error {
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return oops.
			Code("PLUGIN_DIR_ERROR").
			With("path", pluginsDir).
			Wrapf(err, "reading publisher plugins directory")
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}

		pluginPath := filepath.Join(pluginsDir, entry.Name())
		plugin, loadErr := loadPlugin(pluginPath)
		if loadErr != nil {
			return loadErr
		}

		registry.Register(plugin, SourcePlugin)
	}

	return nil
}

func loadPlugin(path string) (*templatePublisher, error) {
	cfg := &PluginConfig{}
	k := koanf.New(".")

	if loadErr := k.Load(file.Provider(path), toml.Parser()); loadErr != nil {
		return nil, oops.
			Code("PLUGIN_INVALID").
			With("path", path).
			Hint("Fix TOML syntax in the plugin file").
			Wrapf(loadErr, "loading publisher plugin from %q", path)
	}

	if unmarshalErr := k.Unmarshal("", cfg); unmarshalErr != nil {
		return nil, oops.
			Code("PLUGIN_INVALID").
			With("path", path).
			Wrapf(unmarshalErr, "decoding publisher plugin from %q", path)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if valErr := v.Struct(cfg); valErr != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(valErr, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return nil, oops.
				Code("PLUGIN_INVALID").
				With("path", path).
				With("field", strings.ToLower(fe.Field())).
				With("tag", fe.Tag()).
				Hint("Plugin files need name, doi_prefix (10.x), and article_url with a {doi} placeholder").
				Errorf("invalid publisher plugin %q", path)
		}

		return nil, oops.
			Code("PLUGIN_INVALID").
			With("path", path).
			Wrapf(valErr, "validating publisher plugin %q", path)
	}

	return &templatePublisher{config: *cfg}, nil
}

// templatePublisher serves a publisher entirely from URL templates in a
// plugin file.
type templatePublisher struct {
	config PluginConfig
}

func (t *templatePublisher) Name() string {
	return t.config.Name
}

func (t *templatePublisher) DOIPrefix() string {
	return t.config.DOIPrefix
}

func (t *templatePublisher) ArticleURL(doi string) (string, error) {
	return strings.ReplaceAll(t.config.ArticleURL, "{doi}", doi), nil
}

func (t *templatePublisher) ImageURL(doi, href string) (string, error) {
	if t.config.ImageURL == "" {
		return "", oops.
			Code("IMAGES_UNSUPPORTED").
			With("publisher", t.config.Name).
			Hint("Add image_url with a {href} placeholder to the plugin file").
			Errorf("publisher %q has no image URL template", t.config.Name)
	}

	replaced := strings.ReplaceAll(t.config.ImageURL, "{href}", href)

	return strings.ReplaceAll(replaced, "{doi}", doi), nil
}

func (t *templatePublisher) AdjustMeta(_ *jats.Article) {}
