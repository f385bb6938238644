package ui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/bus-explorer-tui/pkg/models"
)

func exportTestRecords() []models.LogRecord {
	return []models.LogRecord{
		{
			Timestamp:  "2024-01-01 10:00:00",
			Source:     "1.1.1",
			SourceName: "Sensor A",
			Dest:       "1/2/3",
			DestName:   "Temp",
			Payload:    "21.5",
		},
		{
			Timestamp:  "2024-01-01 10:00:05",
			Source:     "1.1.2",
			SourceName: "Dimmer",
			Dest:       "1/1/1",
			DestName:   "Dim Level",
			Payload:    "80%",
		},
	}
}

func TestExportToCSV(t *testing.T) {
	e := NewExporter()
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := e.ExportToCSV(exportTestRecords(), path); err != nil {
		t.Fatalf("ExportToCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Timestamp,Source") {
		t.Errorf("Unexpected CSV header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "1/2/3") {
		t.Errorf("First data row missing dest key: %q", lines[1])
	}
	if e.GetLastExportPath() != path {
		t.Errorf("Expected last export path %q, got %q", path, e.GetLastExportPath())
	}
}

func TestExportToJSON(t *testing.T) {
	e := NewExporter()
	path := filepath.Join(t.TempDir(), "out.json")

	if err := e.ExportToJSON(exportTestRecords(), path, true); err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	var decoded []models.LogRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Export does not decode: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected 2 records, got %d", len(decoded))
	}
	if decoded[0].DestName != "Temp" {
		t.Errorf("Expected dest name 'Temp', got %q", decoded[0].DestName)
	}
}

func TestExportToJSONL(t *testing.T) {
	e := NewExporter()
	path := filepath.Join(t.TempDir(), "out.jsonl")

	if err := e.ExportToJSONL(exportTestRecords(), path); err != nil {
		t.Fatalf("ExportToJSONL failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var rec models.LogRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Errorf("Line %d does not decode: %v", i, err)
		}
	}
}

func TestExportToText(t *testing.T) {
	e := NewExporter()
	path := filepath.Join(t.TempDir(), "out.log")

	if err := e.ExportToText(exportTestRecords(), path); err != nil {
		t.Fatalf("ExportToText failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	// Text export keeps the pipe layout.
	if got := strings.Count(lines[0], "|"); got != 5 {
		t.Errorf("Expected 5 pipe separators, got %d: %q", got, lines[0])
	}
}

func TestExportDispatch(t *testing.T) {
	e := NewExporter()
	dir := t.TempDir()

	for _, format := range []string{"csv", "json", "jsonl", "text"} {
		path := filepath.Join(dir, "out."+format)
		if err := e.Export(exportTestRecords(), format, path); err != nil {
			t.Errorf("Export %s failed: %v", format, err)
		}
		if !e.FileExists(path) {
			t.Errorf("Export %s produced no file", format)
		}
	}

	if err := e.Export(exportTestRecords(), "xml", filepath.Join(dir, "out.xml")); err == nil {
		t.Error("Invalid export format should return error")
	}
}

func TestExportEmpty(t *testing.T) {
	e := NewExporter()
	path := filepath.Join(t.TempDir(), "out.csv")

	if err := e.ExportToCSV(nil, path); err == nil {
		t.Error("Empty export should return error")
	}
	if e.FileExists(path) {
		t.Error("Failed export should not leave a file")
	}
}

func TestGetDefaultFileName(t *testing.T) {
	e := NewExporter()

	tests := []struct {
		format string
		ext    string
	}{
		{"csv", ".csv"},
		{"json", ".json"},
		{"jsonl", ".jsonl"},
		{"text", ".txt"},
		{"unknown", ".txt"},
	}

	for _, tt := range tests {
		name := e.GetDefaultFileName(tt.format)
		if !strings.HasPrefix(name, "telegrams_") {
			t.Errorf("Expected telegrams_ prefix for %s, got %q", tt.format, name)
		}
		if !strings.HasSuffix(name, tt.ext) {
			t.Errorf("Expected %s extension for %s, got %q", tt.ext, tt.format, name)
		}
	}
}
