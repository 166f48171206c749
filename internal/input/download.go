package input

import (
	"context"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

func (r *Resolver) download(ctx context.Context, url, filename string) (string, error) {
	response, err := r.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", oops.
			Code("DOWNLOAD_FAILED").
			With("url", url).
			Wrapf(err, "downloading article")
	}

	if response.StatusCode() < http.StatusOK || response.StatusCode() >= http.StatusMultipleChoices {
		return "", oops.
			Code("DOWNLOAD_FAILED").
			With("url", url).
			With("status", response.StatusCode()).
			Errorf("article download returned non-success status %d", response.StatusCode())
	}

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return "", oops.
			Code("DOWNLOAD_FAILED").
			With("url", url).
			Wrapf(err, "reading response body")
	}

	if err := os.MkdirAll(r.downloadDir, 0o755); err != nil {
		return "", oops.
			Code("WRITE_FAILED").
			With("path", r.downloadDir).
			Wrapf(err, "creating download directory")
	}

	filePath := filepath.Join(r.downloadDir, filename)
	if err := writeFileAtomic(filePath, content); err != nil {
		return "", err
	}

	return filePath, nil
}

// doiFileName maps a DOI to a filesystem-safe XML filename, e.g.
// 10.1371/journal.pone.0012345 becomes 10.1371_journal.pone.0012345.xml.
func doiFileName(doi string) string {
	safe := strings.NewReplacer("/", "_", ":", "_").Replace(doi)

	return safe + ".xml"
}

func filenameFromURL(rawURL string) string {
	parsed, err := neturl.Parse(rawURL)
	if err != nil {
		return "article.xml"
	}

	baseName := path.Base(parsed.Path)
	if baseName == "" || baseName == "." || baseName == "/" {
		return "article.xml"
	}

	if strings.ToLower(path.Ext(baseName)) != ".xml" {
		return baseName + ".xml"
	}

	return baseName
}

func writeFileAtomic(filePath string, content []byte) error {
	dir := filepath.Dir(filePath)

	tempFile, err := os.CreateTemp(dir, ".oaepub-dl-*.tmp")
	if err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "creating temporary file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, err := tempFile.Write(content); err != nil {
		_ = tempFile.Close()

		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "writing temporary file")
	}

	if err := tempFile.Close(); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "closing temporary file")
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		return oops.
			Code("WRITE_FAILED").
			With("path", filePath).
			Wrapf(err, "replacing destination file")
	}

	return nil
}
