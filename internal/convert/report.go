package convert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
)

const (
	reportVersion = "1.0.0"

	// ReportFile is written into the output directory after every run.
	ReportFile = "report.json"
)

// Report records the outcome of a conversion run for later inspection.
type Report struct {
	Version   string        `json:"version"`
	Generated time.Time     `json:"generated"`
	Articles  []ReportEntry `json:"articles"`
}

// ReportEntry is one article's outcome.
type ReportEntry struct {
	Input         string `json:"input"`
	DOI           string `json:"doi,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	EPUB          string `json:"epub,omitempty"`
	Size          int64  `json:"size,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Images        int    `json:"images,omitempty"`
	ImagesSkipped bool   `json:"images_skipped,omitempty"`
	Error         string `json:"error,omitempty"`
}

func newReport() *Report {
	return &Report{
		Version:   reportVersion,
		Generated: time.Now(),
		Articles:  []ReportEntry{},
	}
}

func (r *Report) add(state runState) {
	entry := ReportEntry{Input: state.item.Source, DOI: state.item.DOI}

	if state.err != nil {
		entry.Error = state.err.Error()
		r.Articles = append(r.Articles, entry)

		return
	}

	if state.result != nil {
		entry.DOI = state.result.DOI
		entry.Publisher = state.result.Publisher
		entry.EPUB = state.result.EPUBPath
		entry.Size = state.result.Size
		entry.Duration = state.result.Duration.Round(time.Millisecond).String()
		entry.Images = state.result.Images
		entry.ImagesSkipped = state.result.ImagesSkipped
	}

	r.Articles = append(r.Articles, entry)
}

// Save writes the report atomically into outputDir.
func (r *Report) Save(outputDir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return oops.
			Code("REPORT_WRITE_ERROR").
			Wrapf(err, "encoding conversion report")
	}

	data = append(data, '\n')
	reportPath := filepath.Join(outputDir, ReportFile)

	tempFile, err := os.CreateTemp(outputDir, ReportFile+".*.tmp")
	if err != nil {
		return oops.
			Code("REPORT_WRITE_ERROR").
			With("path", outputDir).
			Wrapf(err, "creating temporary report file")
	}

	tempPath := tempFile.Name()
	defer func() {
		_ = os.Remove(tempPath)
	}()

	if _, writeErr := tempFile.Write(data); writeErr != nil {
		_ = tempFile.Close()

		return oops.
			Code("REPORT_WRITE_ERROR").
			With("path", tempPath).
			Wrapf(writeErr, "writing temporary report file")
	}

	if closeErr := tempFile.Close(); closeErr != nil {
		return oops.
			Code("REPORT_WRITE_ERROR").
			With("path", tempPath).
			Wrapf(closeErr, "closing temporary report file")
	}

	if renameErr := os.Rename(tempPath, reportPath); renameErr != nil {
		return oops.
			Code("REPORT_WRITE_ERROR").
			With("from", tempPath).
			With("to", reportPath).
			Wrapf(renameErr, "replacing report file")
	}

	return nil
}

// LoadReport reads a previous run's report from outputDir.
func LoadReport(outputDir string) (*Report, error) {
	reportPath := filepath.Join(outputDir, ReportFile)

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, oops.
			Code("REPORT_NOT_FOUND").
			With("path", reportPath).
			Hint("Run 'oaepub convert' to generate a report").
			Wrapf(err, "reading conversion report")
	}

	report := &Report{}
	if unmarshalErr := json.Unmarshal(data, report); unmarshalErr != nil {
		return nil, oops.
			Code("REPORT_CORRUPTED").
			With("path", reportPath).
			Wrapf(unmarshalErr, "parsing conversion report")
	}

	return report, nil
}
