package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// Clipboard formats telegram records for copying.
type Clipboard struct {
	lastCopied string
	copyFormat string // "line", "tsv", "json"
}

// NewClipboard creates a clipboard formatter with the default line format.
func NewClipboard() *Clipboard {
	return &Clipboard{
		lastCopied: "",
		copyFormat: "line",
	}
}

// FormatRecord renders a single record in the given format.
func (c *Clipboard) FormatRecord(rec *models.LogRecord, format string) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("record is nil")
	}

	var content string

	switch format {
	case "line":
		content = formatRecordLine(*rec)
	case "tsv":
		content = formatRecordTSV(*rec)
	case "json":
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode record: %w", err)
		}
		content = string(data)
	case "payload":
		content = rec.Payload
	default:
		return "", fmt.Errorf("invalid format: %s", format)
	}

	c.lastCopied = content
	return content, nil
}

// FormatRecords renders a batch of records, one per line (or a JSON array
// for the json format).
func (c *Clipboard) FormatRecords(recs []models.LogRecord, format string) (string, error) {
	if len(recs) == 0 {
		return "", fmt.Errorf("no records to copy")
	}

	if format == "json" {
		data, err := json.MarshalIndent(recs, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode records: %w", err)
		}
		c.lastCopied = string(data)
		return c.lastCopied, nil
	}

	lines := make([]string, 0, len(recs))
	for i := range recs {
		line, err := c.FormatRecord(&recs[i], format)
		if err != nil {
			return "", err
		}
		lines = append(lines, line)
	}

	c.lastCopied = strings.Join(lines, "\n")
	return c.lastCopied, nil
}

// formatRecordLine renders a record in the pipe layout, so a copied row is
// itself a parseable log line.
func formatRecordLine(rec models.LogRecord) string {
	return fmt.Sprintf("%s | %s | %s | %s | %s | %s",
		rec.Timestamp,
		rec.Source,
		rec.SourceName,
		rec.Dest,
		rec.DestName,
		rec.Payload,
	)
}

func formatRecordTSV(rec models.LogRecord) string {
	return strings.Join([]string{
		rec.Timestamp,
		rec.Source,
		rec.SourceName,
		rec.Dest,
		rec.DestName,
		rec.Payload,
	}, "\t")
}

// GetLastCopied returns the last copied content.
func (c *Clipboard) GetLastCopied() string {
	return c.lastCopied
}

// SetCopyFormat sets the default copy format.
func (c *Clipboard) SetCopyFormat(format string) error {
	validFormats := map[string]bool{
		"line":    true,
		"tsv":     true,
		"json":    true,
		"payload": true,
	}

	if !validFormats[format] {
		return fmt.Errorf("invalid format: %s", format)
	}

	c.copyFormat = format
	return nil
}

// GetCopyFormat returns the current copy format.
func (c *Clipboard) GetCopyFormat() string {
	return c.copyFormat
}

// FormatRecordDefault renders a record with the default format.
func (c *Clipboard) FormatRecordDefault(rec *models.LogRecord) (string, error) {
	return c.FormatRecord(rec, c.copyFormat)
}

// copyTextToClipboard pipes text into the first available system clipboard
// utility.
func copyTextToClipboard(text string) error {
	candidates := [][]string{
		{"pbcopy"},
		{"wl-copy"},
		{"xclip", "-selection", "clipboard"},
		{"xsel", "--clipboard", "--input"},
		{"clip"},
	}
	var lastErr error
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err != nil {
			continue
		}
		cmd := exec.Command(c[0], c[1:]...)
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("no clipboard utility found (pbcopy, wl-copy, xclip, xsel)")
}

// copyCmd copies text to the system clipboard, falling back to an OSC 52
// escape sequence for terminals without a clipboard utility (SSH sessions
// in particular).
func copyCmd(text, what string) tea.Cmd {
	return func() tea.Msg {
		if err := copyTextToClipboard(text); err == nil {
			return clipboardResultMsg{what: what}
		}

		seq := osc52.New(text).Limit(100 * 1024)

		term := strings.ToLower(os.Getenv("TERM"))
		if tmux := os.Getenv("TMUX"); tmux != "" || strings.HasPrefix(term, "tmux") {
			seq = seq.Tmux()
		} else if strings.HasPrefix(term, "screen") {
			seq = seq.Screen()
		}

		_, _ = seq.WriteTo(os.Stdout)
		return clipboardResultMsg{what: what, osc52: true}
	}
}
