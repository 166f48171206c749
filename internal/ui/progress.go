package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/progress"
)

func newProgressWriter(w io.Writer) progress.Writer {
	writer := progress.NewWriter()
	writer.SetOutputWriter(w)
	writer.SetAutoStop(true)
	writer.SetTrackerLength(30)
	writer.SetStyle(progress.StyleBlocks)
	writer.Style().Visibility.ETA = true
	writer.Style().Visibility.Speed = false
	writer.Style().Visibility.Value = true

	return writer
}
