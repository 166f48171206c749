package epub

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

// Pack zips the unpacked EPUB directory into <dir>.epub. The mimetype entry
// goes first and uncompressed, as the EPUB OCF container requires; META-INF
// and OPS follow deflated.
func Pack(dir string) (string, error) {
	epubPath := dir + ".epub"

	out, err := os.Create(epubPath)
	if err != nil {
		return "", oops.
			Code("PACK_FAILED").
			With("path", epubPath).
			Wrapf(err, "creating epub file")
	}
	defer func() {
		_ = out.Close()
	}()

	writer := zip.NewWriter(out)

	mimeHeader := &zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	}

	mimeEntry, err := writer.CreateHeader(mimeHeader)
	if err != nil {
		return "", packErr(epubPath, err, "creating mimetype entry")
	}

	if _, err := mimeEntry.Write([]byte(MimeType)); err != nil {
		return "", packErr(epubPath, err, "writing mimetype entry")
	}

	for _, sub := range []string{"META-INF", "OPS"} {
		if err := addTree(writer, dir, sub); err != nil {
			return "", err
		}
	}

	if err := writer.Close(); err != nil {
		return "", packErr(epubPath, err, "finalizing epub archive")
	}

	if err := out.Close(); err != nil {
		return "", packErr(epubPath, err, "closing epub file")
	}

	return epubPath, nil
}

func addTree(writer *zip.Writer, root, sub string) error {
	base := filepath.Join(root, sub)

	return filepath.WalkDir(base, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return packErr(path, walkErr, "walking epub directory")
		}

		if entry.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return packErr(path, err, "resolving archive entry name")
		}

		zipEntry, err := writer.Create(strings.ReplaceAll(rel, string(filepath.Separator), "/"))
		if err != nil {
			return packErr(path, err, "creating archive entry")
		}

		source, err := os.Open(path)
		if err != nil {
			return packErr(path, err, "opening file for archiving")
		}

		_, copyErr := io.Copy(zipEntry, source)
		closeErr := source.Close()

		if copyErr != nil {
			return packErr(path, copyErr, "copying file into archive")
		}

		if closeErr != nil {
			return packErr(path, closeErr, "closing archived file")
		}

		return nil
	})
}

func packErr(path string, err error, action string) error {
	return oops.
		Code("PACK_FAILED").
		With("path", path).
		Wrapf(err, "%s", action)
}
