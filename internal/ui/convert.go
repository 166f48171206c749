package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/openaccess-epub/oaepub/internal/convert"
)

type styles struct {
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	dim    *color.Color
	bold   *color.Color
}

func newStyles() styles {
	return styles{
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		dim:    color.New(color.Faint),
		bold:   color.New(color.Bold),
	}
}

// ConvertPrinter renders conversion progress events to stderr with colored
// output, adding a progress bar for multi-article batches.
type ConvertPrinter struct {
	w        io.Writer
	showBar  bool
	mu       sync.Mutex
	s        styles
	progress progress.Writer
	tracker  *progress.Tracker
}

// NewConvertPrinter creates a ConvertPrinter that writes to stderr.
func NewConvertPrinter(showBar bool) *ConvertPrinter {
	return &ConvertPrinter{
		w:       os.Stderr,
		showBar: showBar,
		s:       newStyles(),
	}
}

// NewConvertPrinterWithWriter creates a ConvertPrinter that writes to the
// given writer, without a progress bar.
func NewConvertPrinterWithWriter(w io.Writer) *ConvertPrinter {
	return &ConvertPrinter{
		w: w,
		s: newStyles(),
	}
}

// HandleEvent is the callback wired into convert.Options.OnEvent.
func (p *ConvertPrinter) HandleEvent(e convert.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case convert.EventBatchStart:
		p.startBatch(e.Total)

	case convert.EventArticleStart:
		if p.tracker == nil {
			fmt.Fprintf(p.w, "%s converting %s...\n",
				p.s.dim.Sprint("⟳"),
				p.s.bold.Sprint(e.Input),
			)
		}

	case convert.EventArticleDone:
		p.handleDone(e)
	}
}

func (p *ConvertPrinter) startBatch(total int) {
	if !p.showBar || total < 2 {
		return
	}

	p.progress = newProgressWriter(p.w)
	p.tracker = &progress.Tracker{
		Message: "converting articles",
		Total:   int64(total),
		Units:   progress.UnitsDefault,
	}

	p.progress.AppendTracker(p.tracker)

	go p.progress.Render()
}

func (p *ConvertPrinter) handleDone(e convert.Event) {
	if p.tracker != nil {
		p.tracker.Increment(1)
	}

	if e.Err != nil {
		fmt.Fprintf(p.w, "%s %s: %s\n",
			p.s.red.Sprint("✗"),
			p.s.bold.Sprint(e.Input),
			e.Err,
		)

		return
	}

	if e.Result == nil || p.tracker != nil {
		return
	}

	fmt.Fprintf(p.w, "%s %s %s\n",
		p.s.green.Sprint("✓"),
		p.s.bold.Sprint(e.Input),
		p.s.dim.Sprint(formatArticleDetail(e.Result)),
	)
}

func formatArticleDetail(r *convert.ArticleResult) string {
	switch {
	case r.ImagesSkipped && r.Images > 0:
		return fmt.Sprintf("(%d image(s), some skipped)", r.Images)
	case r.ImagesSkipped:
		return "(images skipped)"
	case r.Images > 0:
		return fmt.Sprintf("(%d image(s))", r.Images)
	default:
		return ""
	}
}

// PrintSummary renders a final summary line after the run completes.
func (p *ConvertPrinter) PrintSummary(r *convert.RunResult) {
	if r == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.progress != nil {
		for p.progress.IsRenderInProgress() && p.progress.LengthActive() > 0 {
			time.Sleep(10 * time.Millisecond)
		}

		p.progress.Stop()
	}

	fmt.Fprintln(p.w)

	label := p.s.bold.Sprint("convert complete")
	if r.Failed > 0 {
		label = p.s.yellow.Sprint("convert finished with errors")
	}

	fmt.Fprintf(p.w, "%s: %d article(s), %d succeeded, %d failed\n",
		label,
		r.Articles,
		r.Succeeded,
		r.Failed,
	)
}
