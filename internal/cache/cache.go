package cache

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/samber/oops"
)

// EnvOverride points the cache somewhere else, mainly for tests and
// sandboxed environments.
const EnvOverride = "OAEPUB_CACHE"

const dirName = ".OpenAccess_EPUB"

// Location returns the cross-platform cache directory. On Windows the cache
// lives under %APPDATA%, everywhere else under the user's home directory.
func Location() (string, error) {
	if override := os.Getenv(EnvOverride); override != "" {
		return override, nil
	}

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", oops.
				Code("CACHE_LOCATION_UNKNOWN").
				Hint("Set the APPDATA environment variable or OAEPUB_CACHE").
				Errorf("APPDATA is not set, cannot locate cache directory")
		}

		return filepath.Join(appData, "OpenAccess_EPUB"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", oops.
			Code("CACHE_LOCATION_UNKNOWN").
			Hint("Set the HOME environment variable or OAEPUB_CACHE").
			Wrapf(err, "locating home directory for cache")
	}

	return filepath.Join(home, dirName), nil
}

// Paths names the directories inside the cache.
type Paths struct {
	Root       string
	Images     string
	Logs       string
	CSS        string
	Plugins    string
	DOIMapFile string
}

func PathsAt(root string) Paths {
	return Paths{
		Root:       root,
		Images:     filepath.Join(root, "img_cache"),
		Logs:       filepath.Join(root, "logs"),
		CSS:        filepath.Join(root, "css"),
		Plugins:    filepath.Join(root, "publisher_plugins"),
		DOIMapFile: filepath.Join(root, "doi_map"),
	}
}

// Build creates the cache directory tree. Existing directories are left
// alone so Build can be called on every startup.
func Build(root string) (Paths, error) {
	paths := PathsAt(root)

	for _, dir := range []string{paths.Root, paths.Images, paths.Logs, paths.CSS, paths.Plugins} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return Paths{}, oops.
				Code("CACHE_BUILD_FAILED").
				With("path", dir).
				Wrapf(err, "creating cache directory")
		}
	}

	return paths, nil
}

// Target selects what Clear removes.
type Target string

const (
	TargetAll    Target = "all"
	TargetImages Target = "images"
	TargetLogs   Target = "logs"
	TargetCSS    Target = "css"
	// TargetManual removes nothing; it reports the cache layout so the
	// operator can inspect or edit it by hand.
	TargetManual Target = "manual"
)

func ParseTarget(raw string) (Target, error) {
	switch Target(raw) {
	case TargetAll, TargetImages, TargetLogs, TargetCSS, TargetManual:
		return Target(raw), nil
	default:
		return "", oops.
			Code("UNKNOWN_CACHE_TARGET").
			With("target", raw).
			Hint("Supported targets: all, images, logs, css, manual").
			Errorf("unknown clearcache target %q", raw)
	}
}

// Clear removes the cache content selected by target and returns the paths
// it acted on. The manual target only reports paths.
func Clear(root string, target Target) ([]string, error) {
	paths := PathsAt(root)

	var selected []string
	switch target {
	case TargetAll:
		selected = []string{paths.Root}
	case TargetImages:
		selected = []string{paths.Images}
	case TargetLogs:
		selected = []string{paths.Logs}
	case TargetCSS:
		selected = []string{paths.CSS}
	case TargetManual:
		return []string{paths.Root, paths.Images, paths.Logs, paths.CSS, paths.Plugins, paths.DOIMapFile}, nil
	}

	for _, path := range selected {
		if err := os.RemoveAll(path); err != nil {
			return nil, oops.
				Code("CACHE_CLEAR_FAILED").
				With("path", path).
				With("target", string(target)).
				Wrapf(err, "clearing cache")
		}
	}

	return selected, nil
}
