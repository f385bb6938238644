package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// DetailModal renders one telegram with every resolved field plus the
// recent payload history of its destination group address.
type DetailModal struct {
	record  *models.LogRecord
	history []models.PayloadSample
}

// Open sets the modal content. History is expected newest first.
func (dm *DetailModal) Open(rec *models.LogRecord, history []models.PayloadSample) {
	dm.record = rec
	dm.history = history
}

// Close drops the modal content.
func (dm *DetailModal) Close() {
	dm.record = nil
	dm.history = nil
}

// Record returns the displayed record, or nil.
func (dm *DetailModal) Record() *models.LogRecord {
	return dm.record
}

// Render renders the modal as a centered box.
func (dm *DetailModal) Render(width int) string {
	if dm.record == nil {
		return ""
	}
	boxWidth := minInt(76, maxInt(48, width-8))
	rec := dm.record

	var sb strings.Builder
	sb.WriteString(renderModalTitle("TELEGRAM", boxWidth) + "\n")
	sb.WriteString(fmt.Sprintf("┃ Timestamp:    %s\n", rec.Timestamp))
	sb.WriteString(fmt.Sprintf("┃ Source:       %s\n", formatAddressField(rec.Source, rec.SourceName)))
	sb.WriteString(fmt.Sprintf("┃ Destination:  %s\n", formatAddressField(rec.Dest, rec.DestName)))
	payload := rec.Payload
	if payload == "" {
		payload = "(none)"
	}
	sb.WriteString(fmt.Sprintf("┃ Payload:      %s\n", payload))

	if len(dm.history) > 0 {
		sb.WriteString(renderModalDivider(boxWidth) + "\n")
		sb.WriteString(fmt.Sprintf("┃ Recent payloads for %s:\n", rec.Dest))
		for i, sample := range dm.history {
			value := sample.Payload
			if i == 0 {
				value = lipgloss.NewStyle().Bold(true).Render(value)
			}
			sb.WriteString(fmt.Sprintf("┃   %s at %s\n", value, sample.Timestamp))
		}
	}

	sb.WriteString(renderModalDivider(boxWidth) + "\n")
	sb.WriteString("┃ " + lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render("c copy line | j copy JSON | Esc close"))
	return sb.String()
}
