package epub_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openaccess-epub/oaepub/internal/epub"
	"github.com/openaccess-epub/oaepub/internal/jats"
)

const packageArticle = `<?xml version="1.0"?>
<article article-type="research-article" dtd-version="2.0">
  <front>
    <journal-meta>
      <journal-id journal-id-type="nlm-ta">PLoS ONE</journal-id>
      <journal-title>PLoS ONE</journal-title>
      <publisher><publisher-name>Public Library of Science</publisher-name></publisher>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="doi">10.1371/journal.pone.0012345</article-id>
      <title-group><article-title>Widget Behavior</article-title></title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <name><surname>Doe</surname><given-names>Jane</given-names></name>
        </contrib>
      </contrib-group>
      <pub-date pub-type="epub"><day>14</day><month>7</month><year>2010</year></pub-date>
      <abstract><p>Short abstract.</p></abstract>
      <permissions>
        <copyright-statement>Doe. Open access.</copyright-statement>
      </permissions>
    </article-meta>
  </front>
  <body><sec><title>Intro</title><p>Text.</p></sec></body>
</article>`

func packageSample(t *testing.T) *jats.Article {
	t.Helper()

	article, err := jats.Parse("sample.xml", []byte(packageArticle))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	return article
}

func TestBuildSkeletonLayout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, ""); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	mimetype, err := os.ReadFile(filepath.Join(dir, "mimetype"))
	if err != nil {
		t.Fatalf("ReadFile(mimetype) error = %v", err)
	}

	if string(mimetype) != epub.MimeType {
		t.Fatalf("mimetype = %q, want %q", string(mimetype), epub.MimeType)
	}

	container, err := os.ReadFile(filepath.Join(dir, "META-INF", "container.xml"))
	if err != nil {
		t.Fatalf("ReadFile(container.xml) error = %v", err)
	}

	if !strings.Contains(string(container), "OPS/content.opf") {
		t.Fatalf("container.xml does not point at OPS/content.opf")
	}

	if _, err := os.Stat(filepath.Join(dir, "OPS", "css", "article.css")); err != nil {
		t.Fatalf("article.css missing: %v", err)
	}
}

func TestBuildSkeletonCSSOverride(t *testing.T) {
	t.Parallel()

	override := filepath.Join(t.TempDir(), "custom.css")
	if err := os.WriteFile(override, []byte("body { color: red }"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, override); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	css, err := os.ReadFile(filepath.Join(dir, "OPS", "css", "article.css"))
	if err != nil {
		t.Fatalf("ReadFile(article.css) error = %v", err)
	}

	if string(css) != "body { color: red }" {
		t.Fatalf("css = %q, override not applied", string(css))
	}
}

func TestWriteOPFMetadataAndSpine(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, ""); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	info := epub.PackageInfo{
		Article:   packageSample(t),
		Version:   2,
		HasTables: true,
		Images:    []string{"images/pone.0012345.g001.png"},
	}

	if err := epub.WriteOPF(dir, info); err != nil {
		t.Fatalf("WriteOPF() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "OPS", "content.opf"))
	if err != nil {
		t.Fatalf("ReadFile(content.opf) error = %v", err)
	}

	opf := string(data)
	for _, want := range []string{
		"<dc:title>Widget Behavior</dc:title>",
		"Jane Doe",
		`opf:file-as="Doe, Jane"`,
		"10.1371/journal.pone.0012345",
		"<dc:date>2010-07-14</dc:date>",
		"<dc:publisher>Public Library of Science</dc:publisher>",
		`href="synop.xml"`,
		`href="toc.ncx"`,
		`href="tables.xml"`,
		`href="images/pone.0012345.g001.png"`,
		`media-type="image/png"`,
		`toc="ncx"`,
	} {
		if !strings.Contains(opf, want) {
			t.Fatalf("content.opf missing %q:\n%s", want, opf)
		}
	}
}

func TestWriteOPFVersion3UsesNav(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, ""); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	info := epub.PackageInfo{Article: packageSample(t), Version: 3}
	if err := epub.WriteOPF(dir, info); err != nil {
		t.Fatalf("WriteOPF() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "OPS", "content.opf"))
	if err != nil {
		t.Fatalf("ReadFile(content.opf) error = %v", err)
	}

	opf := string(data)
	if !strings.Contains(opf, `version="3.0"`) {
		t.Fatalf("content.opf version is not 3.0")
	}

	if !strings.Contains(opf, `properties="nav"`) {
		t.Fatalf("content.opf missing nav manifest item")
	}

	if strings.Contains(opf, "toc.ncx") {
		t.Fatalf("EPUB3 package should not reference toc.ncx")
	}
}

func TestWriteNCX(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, ""); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	info := epub.PackageInfo{Article: packageSample(t), Version: 2}
	if err := epub.WriteNCX(dir, info); err != nil {
		t.Fatalf("WriteNCX() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "OPS", "toc.ncx"))
	if err != nil {
		t.Fatalf("ReadFile(toc.ncx) error = %v", err)
	}

	ncx := string(data)
	for _, want := range []string{"Widget Behavior", "synop.xml", "main.xml", "biblio.xml", `playOrder="1"`} {
		if !strings.Contains(ncx, want) {
			t.Fatalf("toc.ncx missing %q", want)
		}
	}
}

func TestWriteNav(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, ""); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	info := epub.PackageInfo{Article: packageSample(t), Version: 3, HasTables: true}
	if err := epub.WriteNav(dir, info); err != nil {
		t.Fatalf("WriteNav() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "OPS", "nav.xhtml"))
	if err != nil {
		t.Fatalf("ReadFile(nav.xhtml) error = %v", err)
	}

	nav := string(data)
	for _, want := range []string{`epub:type="toc"`, "tables.xml", "References"} {
		if !strings.Contains(nav, want) {
			t.Fatalf("nav.xhtml missing %q", want)
		}
	}
}

func TestPackLayout(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := epub.BuildSkeleton(dir, ""); err != nil {
		t.Fatalf("BuildSkeleton() error = %v", err)
	}

	epubPath, err := epub.Pack(dir)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}

	if epubPath != dir+".epub" {
		t.Fatalf("Pack() = %q, want %q", epubPath, dir+".epub")
	}

	reader, err := zip.OpenReader(epubPath)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer reader.Close()

	if len(reader.File) == 0 {
		t.Fatalf("epub archive is empty")
	}

	first := reader.File[0]
	if first.Name != "mimetype" {
		t.Fatalf("first entry = %q, want mimetype", first.Name)
	}

	if first.Method != zip.Store {
		t.Fatalf("mimetype method = %d, want Store", first.Method)
	}

	names := map[string]bool{}
	for _, file := range reader.File {
		names[file.Name] = true
	}

	if !names["META-INF/container.xml"] {
		t.Fatalf("archive missing META-INF/container.xml")
	}

	if !names["OPS/css/article.css"] {
		t.Fatalf("archive missing OPS/css/article.css")
	}
}
