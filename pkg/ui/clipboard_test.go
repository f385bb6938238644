package ui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/user/bus-explorer-tui/pkg/models"
)

func clipboardTestRecord() models.LogRecord {
	return models.LogRecord{
		Timestamp:  "2024-01-01 10:00:00",
		Source:     "1.1.1",
		SourceName: "Sensor A",
		Dest:       "1/2/3",
		DestName:   "Temp",
		Payload:    "21.5",
	}
}

func TestFormatRecordLine(t *testing.T) {
	c := NewClipboard()
	rec := clipboardTestRecord()

	got, err := c.FormatRecord(&rec, "line")
	if err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}

	want := "2024-01-01 10:00:00 | 1.1.1 | Sensor A | 1/2/3 | Temp | 21.5"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
	if c.GetLastCopied() != want {
		t.Errorf("Expected last copied %q, got %q", want, c.GetLastCopied())
	}
}

func TestFormatRecordTSV(t *testing.T) {
	c := NewClipboard()
	rec := clipboardTestRecord()

	got, err := c.FormatRecord(&rec, "tsv")
	if err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}

	fields := strings.Split(got, "\t")
	if len(fields) != 6 {
		t.Fatalf("Expected 6 tab fields, got %d: %q", len(fields), got)
	}
	if fields[3] != "1/2/3" {
		t.Errorf("Expected dest field '1/2/3', got %q", fields[3])
	}
}

func TestFormatRecordJSON(t *testing.T) {
	c := NewClipboard()
	rec := clipboardTestRecord()

	got, err := c.FormatRecord(&rec, "json")
	if err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}

	var decoded models.LogRecord
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("Copied JSON does not decode: %v", err)
	}
	if decoded.Dest != "1/2/3" || decoded.Payload != "21.5" {
		t.Errorf("Decoded record mismatch: %+v", decoded)
	}
}

func TestFormatRecordPayload(t *testing.T) {
	c := NewClipboard()
	rec := clipboardTestRecord()

	got, err := c.FormatRecord(&rec, "payload")
	if err != nil {
		t.Fatalf("FormatRecord failed: %v", err)
	}
	if got != "21.5" {
		t.Errorf("Expected payload '21.5', got %q", got)
	}
}

func TestFormatRecordInvalid(t *testing.T) {
	c := NewClipboard()
	rec := clipboardTestRecord()

	if _, err := c.FormatRecord(&rec, "xml"); err == nil {
		t.Error("Invalid format should return error")
	}
	if _, err := c.FormatRecord(nil, "line"); err == nil {
		t.Error("Nil record should return error")
	}
}

func TestFormatRecords(t *testing.T) {
	c := NewClipboard()
	recs := []models.LogRecord{clipboardTestRecord(), clipboardTestRecord()}

	got, err := c.FormatRecords(recs, "line")
	if err != nil {
		t.Fatalf("FormatRecords failed: %v", err)
	}
	if len(strings.Split(got, "\n")) != 2 {
		t.Errorf("Expected 2 lines, got %q", got)
	}
}

func TestFormatRecordsJSONArray(t *testing.T) {
	c := NewClipboard()
	recs := []models.LogRecord{clipboardTestRecord(), clipboardTestRecord()}

	got, err := c.FormatRecords(recs, "json")
	if err != nil {
		t.Fatalf("FormatRecords failed: %v", err)
	}

	var decoded []models.LogRecord
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("Copied JSON array does not decode: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected 2 records, got %d", len(decoded))
	}
}

func TestFormatRecordsEmpty(t *testing.T) {
	c := NewClipboard()

	if _, err := c.FormatRecords(nil, "line"); err == nil {
		t.Error("Empty batch should return error")
	}
}

func TestSetCopyFormat(t *testing.T) {
	c := NewClipboard()

	if c.GetCopyFormat() != "line" {
		t.Errorf("Expected default format 'line', got %q", c.GetCopyFormat())
	}
	if err := c.SetCopyFormat("tsv"); err != nil {
		t.Fatalf("SetCopyFormat failed: %v", err)
	}
	if err := c.SetCopyFormat("bogus"); err == nil {
		t.Error("Invalid copy format should return error")
	}
	if c.GetCopyFormat() != "tsv" {
		t.Errorf("Failed SetCopyFormat should not change format, got %q", c.GetCopyFormat())
	}

	rec := clipboardTestRecord()
	got, err := c.FormatRecordDefault(&rec)
	if err != nil {
		t.Fatalf("FormatRecordDefault failed: %v", err)
	}
	if !strings.Contains(got, "\t") {
		t.Errorf("Default format should now be tsv, got %q", got)
	}
}
