package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/openaccess-epub/oaepub/internal/publisher"
)

// ListOptions controls how the publisher list is rendered.
type ListOptions struct {
	JSON bool
}

// RenderPublisherList prints the registry contents to stdout, either as a
// table or as JSON.
func RenderPublisherList(listings []publisher.Listing, opts ListOptions) error {
	return renderPublisherList(os.Stdout, listings, opts)
}

func renderPublisherList(w io.Writer, listings []publisher.Listing, opts ListOptions) error {
	if opts.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(listings); err != nil {
			return fmt.Errorf("encode publisher list json: %w", err)
		}

		return nil
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(w)
	writer.SetStyle(table.StyleRounded)
	writer.AppendHeader(table.Row{"PUBLISHER", "DOI PREFIX", "SOURCE", "DOI MAP"})

	for _, listing := range listings {
		mapped := ""
		if listing.Mapped {
			mapped = "yes"
		}

		writer.AppendRow(table.Row{
			listing.Name,
			listing.DOIPrefix,
			string(listing.Source),
			mapped,
		})
	}

	writer.Render()

	return nil
}
