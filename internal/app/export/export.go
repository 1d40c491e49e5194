package export

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx"

	"app-transcript/internal/app/cache"
)

// SheetName is the worksheet holding the session entries
const SheetName = "Transcriptions"

// ToExcel writes the session cache entries as an xlsx workbook
func ToExcel(entries []cache.Entry, w io.Writer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	headerRow.AddCell().Value = "Kind"
	headerRow.AddCell().Value = "File Name"
	headerRow.AddCell().Value = "Fingerprint"
	headerRow.AddCell().Value = "Created At"
	headerRow.AddCell().Value = "Status"
	headerRow.AddCell().Value = "Transcription"

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().Value = string(e.Kind)
		row.AddCell().Value = e.Filename
		row.AddCell().Value = e.Fingerprint
		row.AddCell().Value = e.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = status(e)
		row.AddCell().Value = e.Text
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Filename names the download for a session export
func Filename(now time.Time) string {
	return fmt.Sprintf("transcriptions-%s.xlsx", now.Format("20060102-150405"))
}

func status(e cache.Entry) string {
	if e.Failed {
		return "failed"
	}
	return "done"
}

