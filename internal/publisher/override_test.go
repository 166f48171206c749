package publisher_test

import (
	"strings"
	"testing"

	"github.com/openaccess-epub/oaepub/internal/publisher"
)

func TestWithOverridesReplacesTemplates(t *testing.T) {
	base, ok := publisher.Builtin().Get("plos")
	if !ok {
		t.Fatalf("Get(plos) ok = false, want true")
	}

	pub := publisher.WithOverrides(
		base,
		"https://mirror.example/{doi}.xml",
		"https://mirror.example/images/{href}",
	)

	articleURL, err := pub.ArticleURL("10.1371/journal.pone.0012345")
	if err != nil {
		t.Fatalf("ArticleURL() error = %v", err)
	}

	if articleURL != "https://mirror.example/10.1371/journal.pone.0012345.xml" {
		t.Fatalf("ArticleURL() = %q, want mirror URL", articleURL)
	}

	imageURL, err := pub.ImageURL("10.1371/journal.pone.0012345", "info:doi/x.g001")
	if err != nil {
		t.Fatalf("ImageURL() error = %v", err)
	}

	if imageURL != "https://mirror.example/images/info:doi/x.g001" {
		t.Fatalf("ImageURL() = %q, want mirror image URL", imageURL)
	}

	if pub.Name() != "plos" {
		t.Fatalf("Name() = %q, want plos", pub.Name())
	}
}

func TestWithOverridesKeepsBaseWhenPartial(t *testing.T) {
	base, _ := publisher.Builtin().Get("plos")

	pub := publisher.WithOverrides(base, "", "https://mirror.example/{href}")

	articleURL, err := pub.ArticleURL("10.1371/journal.pone.0012345")
	if err != nil {
		t.Fatalf("ArticleURL() error = %v", err)
	}

	if !strings.Contains(articleURL, "fetchObjectAttachment.action") {
		t.Fatalf("ArticleURL() = %q, want base PLoS URL", articleURL)
	}
}

func TestWithOverridesNoopWithoutTemplates(t *testing.T) {
	base, _ := publisher.Builtin().Get("plos")

	if pub := publisher.WithOverrides(base, "", ""); pub != base {
		t.Fatalf("WithOverrides() returned a wrapper, want base publisher")
	}
}
