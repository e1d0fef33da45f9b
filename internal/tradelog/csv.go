// Package tradelog persists executed trades to an append-only CSV file.
package tradelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gaptrader/internal/domain"
)

var header = []string{"Date", "Symbol", "Quantity", "Price", "Trade Type"}

// Writer appends trade records to a CSV file. The header row is written
// only when the file is created, so records accumulate across runs.
type Writer struct {
	path string
}

// NewWriter creates a Writer targeting the given file path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Path returns the log file path.
func (w *Writer) Path() string {
	return w.path
}

// Append writes the records to the log, creating the file with a
// header row if it does not exist yet.
func (w *Writer) Append(records []domain.TradeRecord) error {
	if len(records) == 0 {
		return nil
	}

	_, statErr := os.Stat(w.path)
	newFile := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening trade log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if newFile {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("writing trade log header: %w", err)
		}
	}
	for _, r := range records {
		row := []string{
			r.Date.Format("2006-01-02"),
			r.Symbol,
			strconv.FormatInt(r.Quantity, 10),
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			string(r.Type),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing trade log row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing trade log: %w", err)
	}
	return nil
}

// Remove deletes the log file so the next Append starts fresh. A
// missing file is not an error.
func (w *Writer) Remove() error {
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
