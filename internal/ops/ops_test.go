package ops_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openaccess-epub/oaepub/internal/jats"
	"github.com/openaccess-epub/oaepub/internal/ops"
)

const opsArticle = `<?xml version="1.0"?>
<article article-type="research-article" dtd-version="2.0">
  <front>
    <journal-meta>
      <journal-id journal-id-type="nlm-ta">PLoS ONE</journal-id>
      <journal-title>PLoS ONE</journal-title>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="doi">10.1371/journal.pone.0012345</article-id>
      <title-group><article-title>Widget <italic>Behavior</italic></article-title></title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <name><surname>Doe</surname><given-names>Jane</given-names></name>
          <xref ref-type="aff" rid="aff1"/>
          <xref ref-type="corresp" rid="cor1"/>
        </contrib>
        <contrib contrib-type="author">
          <name><surname>Roe</surname><given-names>Rick</given-names></name>
          <xref ref-type="aff" rid="aff2"/>
        </contrib>
        <contrib contrib-type="editor">
          <name><surname>Smith</surname><given-names>Alex</given-names></name>
          <xref ref-type="aff" rid="aff2"/>
        </contrib>
      </contrib-group>
      <aff id="aff1"><label>1</label><addr-line>Institute A</addr-line></aff>
      <aff id="aff2"><label>2</label><addr-line>Institute B</addr-line></aff>
      <pub-date pub-type="epub"><year>2010</year></pub-date>
      <abstract>
        <sec><title>Background</title><p>Widgets <italic>matter</italic>.</p></sec>
      </abstract>
    </article-meta>
  </front>
  <body>
    <sec id="s1">
      <title>Introduction</title>
      <p>Widgets are <bold>important</bold> <xref ref-type="bibr" rid="ref1">[1]</xref>.</p>
      <sec id="s1a">
        <title>Background</title>
        <p>Earlier work used <monospace>WidgetKit</monospace>.</p>
      </sec>
      <fig id="fig1">
        <label>Figure 1</label>
        <caption><p>A widget.</p></caption>
        <graphic xlink:href="info:doi/10.1371/journal.pone.0012345.g001" xmlns:xlink="http://www.w3.org/1999/xlink"/>
      </fig>
      <table-wrap id="tab1">
        <label>Table 1</label>
        <caption><p>Widget sizes.</p></caption>
        <table><tr><th>Name</th></tr><tr><td>Small</td></tr></table>
      </table-wrap>
    </sec>
  </body>
  <back>
    <ref-list>
      <ref id="ref1"><citation><name><surname>Prior</surname></name> <article-title>Prior art</article-title> <year>2001</year></citation></ref>
      <ref id="ref2"><citation>Second reference.</citation></ref>
    </ref-list>
  </back>
</article>`

func generateSample(t *testing.T) (string, *ops.Result) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "article")
	if err := os.MkdirAll(filepath.Join(dir, "OPS"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	article, err := jats.Parse("ops.xml", []byte(opsArticle))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	result, err := ops.Generate(dir, article)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	return dir, result
}

func readOPS(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(dir, "OPS", name))
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", name, err)
	}

	return string(data)
}

func TestGenerateReportsTablesAndImages(t *testing.T) {
	t.Parallel()

	_, result := generateSample(t)

	if !result.HasTables {
		t.Fatalf("HasTables = false, want true")
	}

	if len(result.Images) != 1 {
		t.Fatalf("Images len = %d, want 1", len(result.Images))
	}

	image := result.Images[0]
	if image.FileName != "10.1371_journal.pone.0012345.g001.png" {
		t.Fatalf("FileName = %q", image.FileName)
	}

	if !strings.HasPrefix(image.SourceHref, "info:doi/") {
		t.Fatalf("SourceHref = %q", image.SourceHref)
	}
}

func TestSynopsisContent(t *testing.T) {
	t.Parallel()

	dir, _ := generateSample(t)
	synop := readOPS(t, dir, "synop.xml")

	for _, want := range []string{
		"<h1>Widget <i>Behavior</i></h1>",
		"Jane Doe",
		"Rick Roe",
		`<sup><a href="synop.xml#aff1">1</a></sup>`,
		`<sup><a href="synop.xml#cor1">*</a></sup>`,
		`<sup id="aff1">1</sup>`,
		"<h2>Abstract</h2>",
		`<div id="abstract">`,
		"<b>Editor: </b>",
		"Alex Smith",
		"Institute B",
		"<b>Citation: </b>",
		"(2010) Widget Behavior.",
	} {
		if !strings.Contains(synop, want) {
			t.Fatalf("synop.xml missing %q:\n%s", want, synop)
		}
	}
}

func TestMainContent(t *testing.T) {
	t.Parallel()

	dir, _ := generateSample(t)
	main := readOPS(t, dir, "main.xml")

	for _, want := range []string{
		`<div id="s1">`,
		"<h2>Introduction</h2>",
		"<h3>Background</h3>",
		"<b>important</b>",
		`<a href="biblio.xml#ref1">[1]</a>`,
		`<span style="font-family:monospace">WidgetKit</span>`,
		`<img src="images/10.1371_journal.pone.0012345.g001.png"`,
		"<b>Figure 1. </b>",
		`<a href="tables.xml#tab1">Table 1</a>`,
	} {
		if !strings.Contains(main, want) {
			t.Fatalf("main.xml missing %q:\n%s", want, main)
		}
	}

	if strings.Contains(main, "<sec") {
		t.Fatalf("main.xml still contains raw sec elements")
	}
}

func TestBiblioContent(t *testing.T) {
	t.Parallel()

	dir, _ := generateSample(t)
	biblio := readOPS(t, dir, "biblio.xml")

	for _, want := range []string{
		`<div class="ref" id="ref1">`,
		"1. Prior Prior art 2001",
		"2. Second reference.",
	} {
		if !strings.Contains(biblio, want) {
			t.Fatalf("biblio.xml missing %q:\n%s", want, biblio)
		}
	}
}

func TestTablesContent(t *testing.T) {
	t.Parallel()

	dir, _ := generateSample(t)
	tables := readOPS(t, dir, "tables.xml")

	for _, want := range []string{
		`<div class="table" id="tab1">`,
		"Table 1. Widget sizes.",
		"<th>Name</th>",
		"<td>Small</td>",
	} {
		if !strings.Contains(tables, want) {
			t.Fatalf("tables.xml missing %q:\n%s", want, tables)
		}
	}
}

func TestGenerateCollectsAbstractGraphics(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := os.MkdirAll(filepath.Join(dir, "OPS"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	article, err := jats.Parse("formula.xml", []byte(`<article xmlns:xlink="http://www.w3.org/1999/xlink">
		<front>
			<journal-meta><journal-title>J</journal-title></journal-meta>
			<article-meta>
				<title-group><article-title>Formulas</article-title></title-group>
				<contrib-group><contrib contrib-type="author"><name><surname>Doe</surname></name></contrib></contrib-group>
				<pub-date><year>2010</year></pub-date>
				<abstract>
					<p>Rate follows <inline-graphic xlink:href="info:doi/10.1371/journal.pone.0012345.e001"/>.</p>
				</abstract>
			</article-meta>
		</front>
		<body><p>Text only.</p></body>
	</article>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	result, err := ops.Generate(dir, article)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if len(result.Images) != 1 {
		t.Fatalf("Images len = %d, want 1", len(result.Images))
	}

	if result.Images[0].FileName != "10.1371_journal.pone.0012345.e001.png" {
		t.Fatalf("FileName = %q", result.Images[0].FileName)
	}

	synop := readOPS(t, dir, "synop.xml")
	if !strings.Contains(synop, `<img src="images/10.1371_journal.pone.0012345.e001.png"`) {
		t.Fatalf("synop.xml missing abstract image:\n%s", synop)
	}
}

func TestGenerateWithoutTablesSkipsTablesDoc(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "article")
	if err := os.MkdirAll(filepath.Join(dir, "OPS"), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	article, err := jats.Parse("plain.xml", []byte(`<article>
		<front>
			<journal-meta><journal-title>J</journal-title></journal-meta>
			<article-meta>
				<title-group><article-title>Plain</article-title></title-group>
				<contrib-group><contrib contrib-type="author"><name><surname>Doe</surname></name></contrib></contrib-group>
				<pub-date><year>2010</year></pub-date>
			</article-meta>
		</front>
		<body><p>Text only.</p></body>
	</article>`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	result, err := ops.Generate(dir, article)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.HasTables {
		t.Fatalf("HasTables = true, want false")
	}

	if _, statErr := os.Stat(filepath.Join(dir, "OPS", "tables.xml")); !os.IsNotExist(statErr) {
		t.Fatalf("tables.xml should not exist")
	}
}
