package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/strava-export/internal"
)

// JSONLExporter exports documents in JSONL format (one activity per line)
type JSONLExporter struct{}

// Export exports a document to JSONL format. Window documents produce one
// upstream activity object per line; the latest-activity document is one line.
func (e *JSONLExporter) Export(doc internal.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	switch d := doc.(type) {
	case *internal.WindowExport:
		for i := range d.Activities {
			if err := enc.Encode(d.Activities[i]); err != nil {
				return fmt.Errorf("failed to encode activity %d: %w", d.Activities[i].ID, err)
			}
		}
		return nil
	case *internal.ActivityExport:
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode activity %d: %w", d.Activity.ID, err)
		}
		return nil
	default:
		return unsupportedDocument(doc)
	}
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
