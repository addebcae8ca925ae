package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/strava-export/internal"
)

// JSONExporter exports documents in JSON format (pretty-printed, two spaces)
type JSONExporter struct{}

// Export exports a document to JSON format
func (e *JSONExporter) Export(doc internal.Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(doc)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
