package export

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/strava-export/internal"
)

// WriteFile renders doc with e into outputDir and returns the final path.
// The document goes to a temp file in the same directory and is renamed into
// place, so a failed run never leaves a truncated export behind.
func WriteFile(outputDir string, doc internal.Document, e Exporter) (string, error) {
	path := filepath.Join(outputDir, FileName(doc, e))
	fail := func(err error) (string, error) {
		return "", &internal.WriteError{Format: e.Extension(), Path: path, Err: err}
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fail(fmt.Errorf("failed to create output directory: %w", err))
	}

	tmp, err := os.CreateTemp(outputDir, "."+doc.FileStem()+"-*.tmp")
	if err != nil {
		return fail(err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := e.Export(doc, buf); err != nil {
		return fail(fmt.Errorf("failed to render %s: %w", doc.Kind(), err))
	}
	if err := buf.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		return fail(err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fail(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fail(err)
	}
	committed = true

	internal.LogDebug("Wrote %s export to %s", doc.Kind(), path)
	return path, nil
}
