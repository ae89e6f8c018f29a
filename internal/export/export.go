// Package export renders the task list as JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"locktodo/internal/output"
	"locktodo/internal/task"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "pdf"}

// ErrUnknownFormat is returned for formats not in Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Title heads the PDF report.
const Title = "To-Do List"

// Export renders tasks in format.
func Export(tasks []task.Task, format string) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "csv":
		return exportCSV(tasks)
	case "pdf":
		return exportPDF(tasks)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func exportCSV(tasks []task.Task) ([]byte, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)
	_ = w.Write([]string{"position", "id", "text", "completed"})
	for i, t := range tasks {
		_ = w.Write([]string{fmt.Sprint(i + 1), t.ID, t.Text, fmt.Sprint(t.Completed)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func exportPDF(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(Title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, Title)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(40, 6, output.Summary(tasks))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	for i, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		line := fmt.Sprintf("%d. %s %s", i+1, box, tr(t.Text))
		pdf.MultiCell(0, 6, line, "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
