package export

import (
	"fmt"
	"io"

	"github.com/iksnae/strava-export/internal"
)

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(doc internal.Document, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, &internal.ConfigError{
			Field: "format",
			Err:   fmt.Errorf("unsupported format: %s (supported: json, yaml, md, jsonl)", format),
		}
	}
}

// FileName returns the output file name for doc in this exporter's format
func FileName(doc internal.Document, e Exporter) string {
	return doc.FileStem() + "." + e.Extension()
}

func unsupportedDocument(doc internal.Document) error {
	return fmt.Errorf("unsupported document type %T", doc)
}
