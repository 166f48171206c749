package epub

import (
	_ "embed"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// MimeType is the required content of the EPUB mimetype file.
const MimeType = "application/epub+zip"

const containerXML = `<?xml version="1.0" encoding="UTF-8" ?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
   <rootfiles>
      <rootfile full-path="OPS/content.opf" media-type="application/oebps-package+xml"/>
   </rootfiles>
</container>
`

//go:embed article.css
var defaultCSS []byte

// BuildSkeleton creates the unpacked EPUB directory hierarchy:
//
//	<dir>/mimetype
//	<dir>/META-INF/container.xml
//	<dir>/OPS/css/article.css
//
// cssOverride, when non-empty, replaces the embedded stylesheet.
func BuildSkeleton(dir string, cssOverride string) error {
	css := defaultCSS
	if cssOverride != "" {
		data, err := os.ReadFile(cssOverride)
		if err != nil {
			return oops.
				Code("CSS_READ_ERROR").
				With("path", cssOverride).
				Hint("Check the default_css path in oaepub.toml or the cache css directory").
				Wrapf(err, "reading stylesheet override")
		}

		css = data
	}

	if err := os.MkdirAll(filepath.Join(dir, "META-INF"), 0o755); err != nil {
		return skeletonErr(dir, err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "OPS", "css"), 0o755); err != nil {
		return skeletonErr(dir, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "mimetype"), []byte(MimeType), 0o644); err != nil {
		return skeletonErr(filepath.Join(dir, "mimetype"), err)
	}

	containerPath := filepath.Join(dir, "META-INF", "container.xml")
	if err := os.WriteFile(containerPath, []byte(containerXML), 0o644); err != nil {
		return skeletonErr(containerPath, err)
	}

	cssPath := filepath.Join(dir, "OPS", "css", "article.css")
	if err := os.WriteFile(cssPath, css, 0o644); err != nil {
		return skeletonErr(cssPath, err)
	}

	return nil
}

func skeletonErr(path string, err error) error {
	return oops.
		Code("SKELETON_BUILD_FAILED").
		With("path", path).
		Wrapf(err, "building EPUB skeleton")
}
