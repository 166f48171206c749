package collect_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/openaccess-epub/oaepub/internal/collect"
)

const issuePage = `<!DOCTYPE html>
<html>
<head><title>PLoS ONE</title></head>
<body>
<h1>Table of Contents | July 2010</h1>
<div class="toc">
  <a title="Read Open Access Article" href="/article/info%3Adoi%2F10.1371%2Fjournal.pone.0012345">Article one</a>
  <a title="Read Open Access Article" href="/article/info%3Adoi%2F10.1371%2Fjournal.pone.0012346;jsessionid=abc">Article two</a>
  <a title="Read Open Access Article" href="/article/info%3Adoi%2F10.1371%2Fjournal.pone.0012345">Duplicate</a>
  <a title="Read Open Access Article" href="/external/elsewhere">Ignored</a>
  <a href="/article/info%3Adoi%2F10.1371%2Fjournal.pone.0099999">No title attribute</a>
</div>
</body>
</html>`

func TestCollectIssueWritesCollectionFile(t *testing.T) {
	t.Parallel()

	outDir := filepath.Join(t.TempDir(), "collections")
	collector := collect.New(outDir)
	collector.SetClient(collect.NewMockRestyClient(func(req *http.Request) *http.Response {
		return collect.NewHTTPResponse(req, http.StatusOK, issuePage)
	}))

	path, count, err := collector.CollectIssue(
		context.Background(),
		"http://www.plosone.org/article/browseIssue.action",
	)
	if err != nil {
		t.Fatalf("CollectIssue() error = %v", err)
	}

	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	if filepath.Base(path) != "PLoS_ONE_July_2010.txt" {
		t.Fatalf("collection file = %q, want PLoS_ONE_July_2010.txt", filepath.Base(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := "doi:10.1371/journal.pone.0012345\ndoi:10.1371/journal.pone.0012346\n"
	if string(content) != want {
		t.Fatalf("collection content = %q, want %q", content, want)
	}
}

func TestCollectIssueRejectsUnknownSite(t *testing.T) {
	t.Parallel()

	collector := collect.New(t.TempDir())

	_, _, err := collector.CollectIssue(context.Background(), "http://www.example.org/issue")
	if err == nil {
		t.Fatalf("CollectIssue() error = nil, want non-nil")
	}
}

func TestCollectIssueRejectsNonIssuePage(t *testing.T) {
	t.Parallel()

	collector := collect.New(t.TempDir())
	collector.SetClient(collect.NewMockRestyClient(func(req *http.Request) *http.Response {
		return collect.NewHTTPResponse(req, http.StatusOK, "<html><h1>Not an issue</h1></html>")
	}))

	_, _, err := collector.CollectIssue(context.Background(), "http://www.plosone.org/issue")
	if err == nil {
		t.Fatalf("CollectIssue() error = nil, want non-nil")
	}
}

func TestCollectIssueReportsHTTPFailure(t *testing.T) {
	t.Parallel()

	collector := collect.New(t.TempDir())
	collector.SetClient(collect.NewMockRestyClient(func(req *http.Request) *http.Response {
		return collect.NewHTTPResponse(req, http.StatusServiceUnavailable, "down")
	}))

	_, _, err := collector.CollectIssue(context.Background(), "http://www.plosone.org/issue")
	if err == nil {
		t.Fatalf("CollectIssue() error = nil, want non-nil")
	}
}

func TestJournalName(t *testing.T) {
	t.Parallel()

	name, err := collect.JournalName("http://www.plosbiology.org/article/browseIssue.action")
	if err != nil {
		t.Fatalf("JournalName() error = %v", err)
	}

	if name != "PLoS_Biology" {
		t.Fatalf("JournalName() = %q, want PLoS_Biology", name)
	}
}

func TestArticleID(t *testing.T) {
	t.Parallel()

	id, ok := collect.ArticleID("/article/info%3Adoi%2F10.1371%2Fjournal.pgen.1000001;jsessionid=x")
	if !ok || id != "journal.pgen.1000001" {
		t.Fatalf("ArticleID() = %q, %v, want journal.pgen.1000001, true", id, ok)
	}

	if _, ok := collect.ArticleID("/article/other"); ok {
		t.Fatalf("ArticleID() ok = true for non-DOI link, want false")
	}
}
