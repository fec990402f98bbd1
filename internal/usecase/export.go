package usecase

import (
	"encoding/csv"
	"fmt"
	"io"

	"MyPay/internal/domain/models"
)

// WriteCSV writes the fixed header and one row per record.
func WriteCSV(w io.Writer, records ...models.ExportRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
