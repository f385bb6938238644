package ui

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// Exporter writes the currently visible telegram rows to disk in various
// formats. Exports always operate on the projected (filtered, capped) rows,
// not the full cache.
type Exporter struct {
	lastExportPath string
}

// NewExporter creates a new exporter.
func NewExporter() *Exporter {
	return &Exporter{
		lastExportPath: "",
	}
}

// Export dispatches on format. Supported formats: csv, json, jsonl, text.
func (e *Exporter) Export(recs []models.LogRecord, format, path string) error {
	switch format {
	case "csv":
		return e.ExportToCSV(recs, path)
	case "json":
		return e.ExportToJSON(recs, path, true)
	case "jsonl":
		return e.ExportToJSONL(recs, path)
	case "text":
		return e.ExportToText(recs, path)
	default:
		return fmt.Errorf("invalid export format: %s", format)
	}
}

// ExportToCSV exports records to CSV format.
func (e *Exporter) ExportToCSV(recs []models.LogRecord, path string) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to export")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{"Timestamp", "Source", "Source Name", "Destination", "Destination Name", "Payload"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write data
	for _, rec := range recs {
		row := []string{
			rec.Timestamp,
			rec.Source,
			rec.SourceName,
			rec.Dest,
			rec.DestName,
			rec.Payload,
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	e.lastExportPath = path
	return nil
}

// ExportToJSON exports records to a JSON array.
func (e *Exporter) ExportToJSON(recs []models.LogRecord, path string, pretty bool) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to export")
	}

	var data []byte
	var err error

	if pretty {
		data, err = json.MarshalIndent(recs, "", "  ")
	} else {
		data, err = json.Marshal(recs)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	e.lastExportPath = path
	return nil
}

// ExportToJSONL exports records as JSONL (one JSON object per line).
func (e *Exporter) ExportToJSONL(recs []models.LogRecord, path string) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to export")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	for _, rec := range recs {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}

		if _, err := file.WriteString(string(data) + "\n"); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}

	e.lastExportPath = path
	return nil
}

// ExportToText exports records as plain pipe-layout lines, so an export is
// itself a loadable log file.
func (e *Exporter) ExportToText(recs []models.LogRecord, path string) error {
	if len(recs) == 0 {
		return fmt.Errorf("no records to export")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	for _, rec := range recs {
		if _, err := file.WriteString(formatRecordLine(rec) + "\n"); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	e.lastExportPath = path
	return nil
}

// GetLastExportPath returns the path of the last export.
func (e *Exporter) GetLastExportPath() string {
	return e.lastExportPath
}

// FileExists checks if a file exists.
func (e *Exporter) FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetDefaultFileName generates a timestamped default filename for export.
func (e *Exporter) GetDefaultFileName(format string) string {
	timestamp := time.Now().Format("20060102_150405")
	ext := "txt"

	switch format {
	case "csv":
		ext = "csv"
	case "json":
		ext = "json"
	case "jsonl":
		ext = "jsonl"
	case "text":
		ext = "txt"
	}

	return fmt.Sprintf("telegrams_%s.%s", timestamp, ext)
}
