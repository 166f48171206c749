package publisher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// DOIMap associates DOI registrant prefixes with publisher short names. On
// disk it is a flat text file with one colon-delimited record per line:
//
//	# prefix: publisher
//	10.1371: plos
//	10.3389: frontiers
//
// Blank lines and '#' comments are ignored; the last record for a prefix
// wins.
type DOIMap map[string]string

func (m DOIMap) HasName(name string) bool {
	for _, mapped := range m {
		if mapped == name {
			return true
		}
	}

	return false
}

// LoadDOIMap reads the doi_map file. A missing file is an empty map.
func LoadDOIMap(path string) (DOIMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DOIMap{}, nil
		}

		return nil, oops.
			Code("DOIMAP_READ_ERROR").
			With("path", path).
			Wrapf(err, "reading doi_map file")
	}

	doiMap := DOIMap{}
	for lineNo, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		prefix, name, found := strings.Cut(line, ":")
		if !found {
			return nil, oops.
				Code("DOIMAP_INVALID").
				With("path", path).
				With("line", lineNo+1).
				Hint("doi_map records look like '10.1371: plos'").
				Errorf("malformed doi_map record on line %d", lineNo+1)
		}

		prefix = strings.TrimSpace(prefix)
		name = strings.TrimSpace(name)
		if prefix == "" || name == "" {
			return nil, oops.
				Code("DOIMAP_INVALID").
				With("path", path).
				With("line", lineNo+1).
				Errorf("empty prefix or publisher on doi_map line %d", lineNo+1)
		}

		doiMap[prefix] = name
	}

	return doiMap, nil
}

// Save writes the doi_map atomically, sorted by prefix for stable diffs.
func (m DOIMap) Save(path string) error {
	prefixes := make([]string, 0, len(m))
	for prefix := range m {
		prefixes = append(prefixes, prefix)
	}

	sort.Strings(prefixes)

	var builder strings.Builder
	builder.WriteString("# DOI prefix to publisher short name, one record per line.\n")
	for _, prefix := range prefixes {
		fmt.Fprintf(&builder, "%s: %s\n", prefix, m[prefix])
	}

	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return oops.
			Code("DOIMAP_WRITE_ERROR").
			With("path", dir).
			Wrapf(err, "creating temporary doi_map file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, writeErr := tempFile.WriteString(builder.String()); writeErr != nil {
		_ = tempFile.Close()
		return oops.
			Code("DOIMAP_WRITE_ERROR").
			With("path", tempPath).
			Wrapf(writeErr, "writing temporary doi_map file")
	}

	if closeErr := tempFile.Close(); closeErr != nil {
		return oops.
			Code("DOIMAP_WRITE_ERROR").
			With("path", tempPath).
			Wrapf(closeErr, "closing temporary doi_map file")
	}

	if renameErr := os.Rename(tempPath, path); renameErr != nil {
		return oops.
			Code("DOIMAP_WRITE_ERROR").
			With("from", tempPath).
			With("to", path).
			Wrapf(renameErr, "replacing doi_map file")
	}

	return nil
}

// DefaultDOIMap seeds a fresh cache with the builtin publishers.
func DefaultDOIMap() DOIMap {
	return DOIMap{
		"10.1371": "plos",
		"10.3389": "frontiers",
	}
}
