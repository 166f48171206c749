package jats

import "encoding/xml"

// Front models the <front> element shared by JPTS 2.0, 2.3, and 3.0.
// <journal-meta> and <article-meta> are required, <notes> is zero or one.
type Front struct {
	XMLName     xml.Name    `xml:"front"`
	JournalMeta JournalMeta `xml:"journal-meta"`
	ArticleMeta ArticleMeta `xml:"article-meta"`
	Notes       *Node       `xml:"notes"`
}

type JournalMeta struct {
	JournalIDs []TypedValue `xml:"journal-id"`
	Titles     []string     `xml:"journal-title"`
	TitleGroup *struct {
		Titles []string `xml:"journal-title"`
	} `xml:"journal-title-group"`
	ISSNs     []ISSN     `xml:"issn"`
	Publisher *Publisher `xml:"publisher"`
}

type TypedValue struct {
	Type  string `xml:"journal-id-type,attr"`
	Value string `xml:",chardata"`
}

type ISSN struct {
	PubType string `xml:"pub-type,attr"`
	Value   string `xml:",chardata"`
}

type Publisher struct {
	ContentType string `xml:"content-type,attr"`
	Name        string `xml:"publisher-name"`
	Loc         string `xml:"publisher-loc"`
}

type ArticleMeta struct {
	ArticleIDs    []ArticleID    `xml:"article-id"`
	Categories    *Node          `xml:"article-categories"`
	TitleGroup    TitleGroup     `xml:"title-group"`
	ContribGroups []ContribGroup `xml:"contrib-group"`
	Affs          []*Node        `xml:"aff"`
	AuthorNotes   *Node          `xml:"author-notes"`
	PubDates      []PubDate      `xml:"pub-date"`
	Volume        string         `xml:"volume"`
	Issue         string         `xml:"issue"`
	FPage         string         `xml:"fpage"`
	LPage         string         `xml:"lpage"`
	PageRange     string         `xml:"page-range"`
	ElocationID   string         `xml:"elocation-id"`
	Abstracts     []*Node        `xml:"abstract"`
	Permissions   *Permissions   `xml:"permissions"`
}

type ArticleID struct {
	PubIDType string `xml:"pub-id-type,attr"`
	Value     string `xml:",chardata"`
}

type TitleGroup struct {
	ArticleTitle Node     `xml:"article-title"`
	Subtitles    []string `xml:"subtitle"`
}

// ContribGroup groups contributors who share a role; <contrib> carries the
// contrib-type attribute that separates authors from editors.
type ContribGroup struct {
	Contribs []Contrib `xml:"contrib"`
}

type Contrib struct {
	Type      string  `xml:"contrib-type,attr"`
	Corresp   string  `xml:"corresp,attr"`
	Name      *Name   `xml:"name"`
	Collab    string  `xml:"collab"`
	Xrefs     []Xref  `xml:"xref"`
	Email     string  `xml:"email"`
	Role      string  `xml:"role"`
	Degrees   string  `xml:"degrees"`
	OnBehalf  string  `xml:"on-behalf-of"`
	Anonymous *string `xml:"anonymous"`
}

type Name struct {
	Surname    string `xml:"surname"`
	GivenNames string `xml:"given-names"`
	Prefix     string `xml:"prefix"`
	Suffix     string `xml:"suffix"`
}

// Full renders "Given Names Surname, Suffix" the way author lines are
// printed in the synopsis.
func (n *Name) Full() string {
	if n == nil {
		return ""
	}

	full := n.GivenNames
	if full != "" && n.Surname != "" {
		full += " "
	}

	full += n.Surname
	if n.Suffix != "" {
		full += ", " + n.Suffix
	}

	return full
}

// FileAs renders "Surname, Given Names" for the OPF file-as attribute.
func (n *Name) FileAs() string {
	if n == nil {
		return ""
	}

	if n.GivenNames == "" {
		return n.Surname
	}

	return n.Surname + ", " + n.GivenNames
}

type Xref struct {
	RefType string `xml:"ref-type,attr"`
	RID     string `xml:"rid,attr"`
	Value   string `xml:",chardata"`
}

// PubDate content model is (((day?, month?) | season)?, year), keyed by the
// pub-type attribute.
type PubDate struct {
	PubType string `xml:"pub-type,attr"`
	Day     int    `xml:"day"`
	Month   int    `xml:"month"`
	Season  string `xml:"season"`
	Year    int    `xml:"year"`
}

type Permissions struct {
	CopyrightStatement string `xml:"copyright-statement"`
	CopyrightYear      string `xml:"copyright-year"`
	License            *Node  `xml:"license"`
}
