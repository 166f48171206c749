package publisher_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openaccess-epub/oaepub/internal/publisher"
)

func TestLoadDOIMapParsesRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doi_map")
	content := `# comment line
10.1371: plos

  10.3389 :  frontiers
10.1371: plos-override
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	doiMap, err := publisher.LoadDOIMap(path)
	if err != nil {
		t.Fatalf("LoadDOIMap() error = %v", err)
	}

	if len(doiMap) != 2 {
		t.Fatalf("doiMap len = %d, want 2", len(doiMap))
	}

	if doiMap["10.3389"] != "frontiers" {
		t.Fatalf("doiMap[10.3389] = %q, want frontiers", doiMap["10.3389"])
	}

	if doiMap["10.1371"] != "plos-override" {
		t.Fatalf("doiMap[10.1371] = %q, duplicate prefix should keep the last record", doiMap["10.1371"])
	}
}

func TestLoadDOIMapMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	doiMap, err := publisher.LoadDOIMap(filepath.Join(t.TempDir(), "doi_map"))
	if err != nil {
		t.Fatalf("LoadDOIMap() error = %v", err)
	}

	if len(doiMap) != 0 {
		t.Fatalf("doiMap len = %d, want 0", len(doiMap))
	}
}

func TestLoadDOIMapRejectsMalformedLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doi_map")
	if err := os.WriteFile(path, []byte("10.1371 plos\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := publisher.LoadDOIMap(path); err == nil {
		t.Fatalf("LoadDOIMap() error = nil, want non-nil")
	}
}

func TestSaveAndLoadDOIMapRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doi_map")
	original := publisher.DefaultDOIMap()

	if err := original.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := publisher.LoadDOIMap(path)
	if err != nil {
		t.Fatalf("LoadDOIMap() error = %v", err)
	}

	if len(loaded) != len(original) {
		t.Fatalf("loaded len = %d, want %d", len(loaded), len(original))
	}

	for prefix, name := range original {
		if loaded[prefix] != name {
			t.Fatalf("loaded[%q] = %q, want %q", prefix, loaded[prefix], name)
		}
	}
}

func TestSaveWritesSortedRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "doi_map")
	doiMap := publisher.DOIMap{
		"10.3389": "frontiers",
		"10.1155": "hindawi",
		"10.1371": "plos",
	}

	if err := doiMap.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	hindawi := strings.Index(string(data), "10.1155")
	plos := strings.Index(string(data), "10.1371")
	frontiers := strings.Index(string(data), "10.3389")

	if hindawi < 0 || plos < 0 || frontiers < 0 {
		t.Fatalf("Save() output missing records: %q", string(data))
	}

	if !(hindawi < plos && plos < frontiers) {
		t.Fatalf("Save() records not sorted: %q", string(data))
	}
}
