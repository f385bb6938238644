package logfile

import (
	"github.com/user/bus-explorer-tui/pkg/models"
)

// Enrich resolves the parsed line's addresses against the catalog and
// assembles the displayable record. A nil catalog resolves every name to
// "N/A"; the raw keys stay untouched so filtering keeps working without a
// loaded project.
func Enrich(p ParsedLine, cat *models.Catalog) models.LogRecord {
	rec := models.LogRecord{
		Timestamp:  p.Timestamp,
		Source:     p.Source,
		SourceName: cat.DeviceName(p.Source),
		Dest:       p.Dest,
		DestName:   cat.GroupName(p.Dest),
		Payload:    p.Payload,
	}
	rec.SearchString = models.BuildSearchString(
		rec.Timestamp, rec.Source, rec.SourceName, rec.Dest, rec.DestName, rec.Payload)
	return rec
}
