package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
)

const indexFileName = "index.json"

// ImageIndex records which article image sets are already cached, keyed by
// DOI, so repeat conversions skip the download round-trip.
type ImageIndex struct {
	Version int                    `json:"version"`
	Entries map[string]*ImageEntry `json:"entries"`
}

type ImageEntry struct {
	Dir       string    `json:"dir"`
	FetchedAt time.Time `json:"fetched_at"`
	Files     []string  `json:"files,omitempty"`
}

func NewImageIndex() *ImageIndex {
	return &ImageIndex{
		Version: 1,
		Entries: map[string]*ImageEntry{},
	}
}

func LoadImageIndex(imagesDir string) (*ImageIndex, error) {
	indexPath := filepath.Join(imagesDir, indexFileName)
	data, err := os.ReadFile(indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewImageIndex(), nil
		}

		return nil, oops.
			Code("IMAGE_INDEX_ERROR").
			With("path", indexPath).
			Wrapf(err, "reading image cache index")
	}

	index := &ImageIndex{}
	if unmarshalErr := json.Unmarshal(data, index); unmarshalErr != nil {
		return nil, oops.
			Code("IMAGE_INDEX_ERROR").
			With("path", indexPath).
			Hint("Run 'oaepub clearcache images' to reset the image cache").
			Wrapf(unmarshalErr, "parsing image cache index")
	}

	if index.Version == 0 {
		index.Version = 1
	}

	if index.Entries == nil {
		index.Entries = map[string]*ImageEntry{}
	}

	return index, nil
}

func (i *ImageIndex) Save(imagesDir string) error {
	if i == nil {
		return oops.
			Code("IMAGE_INDEX_ERROR").
			Errorf("cannot save nil image cache index")
	}

	if i.Entries == nil {
		i.Entries = map[string]*ImageEntry{}
	}

	if err := os.MkdirAll(imagesDir, 0o750); err != nil {
		return oops.
			Code("IMAGE_INDEX_ERROR").
			With("path", imagesDir).
			Wrapf(err, "creating image cache directory")
	}

	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return oops.
			Code("IMAGE_INDEX_ERROR").
			Wrapf(err, "encoding image cache index")
	}

	data = append(data, '\n')
	indexPath := filepath.Join(imagesDir, indexFileName)

	tempFile, err := os.CreateTemp(imagesDir, indexFileName+".*.tmp")
	if err != nil {
		return oops.
			Code("IMAGE_INDEX_ERROR").
			With("path", imagesDir).
			Wrapf(err, "creating temporary index file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, writeErr := tempFile.Write(data); writeErr != nil {
		_ = tempFile.Close()
		return oops.
			Code("IMAGE_INDEX_ERROR").
			With("path", tempPath).
			Wrapf(writeErr, "writing temporary index file")
	}

	if closeErr := tempFile.Close(); closeErr != nil {
		return oops.
			Code("IMAGE_INDEX_ERROR").
			With("path", tempPath).
			Wrapf(closeErr, "closing temporary index file")
	}

	if renameErr := os.Rename(tempPath, indexPath); renameErr != nil {
		return oops.
			Code("IMAGE_INDEX_ERROR").
			With("from", tempPath).
			With("to", indexPath).
			Wrapf(renameErr, "replacing image cache index")
	}

	return nil
}

func (i *ImageIndex) Get(doi string) *ImageEntry {
	if i == nil {
		return nil
	}

	return i.Entries[doi]
}

func (i *ImageIndex) Set(doi string, entry *ImageEntry) {
	if i == nil {
		return
	}

	if i.Entries == nil {
		i.Entries = map[string]*ImageEntry{}
	}

	i.Entries[doi] = entry
}
