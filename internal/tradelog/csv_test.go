package tradelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gaptrader/internal/domain"
)

func record(symbol string, qty int64, price float64, typ domain.TradeType) domain.TradeRecord {
	return domain.TradeRecord{
		Date:     time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		Symbol:   symbol,
		Quantity: qty,
		Price:    price,
		Type:     typ,
	}
}

func TestAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	w := NewWriter(path)

	if err := w.Append([]domain.TradeRecord{record("AAPL", 10, 100.5, domain.TradeBuy)}); err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if err := w.Append([]domain.TradeRecord{record("MSFT", -5, 400, domain.TradeSell)}); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), data)
	}
	if lines[0] != "Date,Symbol,Quantity,Price,Trade Type" {
		t.Fatalf("header = %q", lines[0])
	}
	if lines[1] != "2024-03-05,AAPL,10,100.5,buy" {
		t.Fatalf("row 1 = %q", lines[1])
	}
	if lines[2] != "2024-03-05,MSFT,-5,400,sell" {
		t.Fatalf("row 2 = %q", lines[2])
	}
}

func TestAppendEmptyDoesNotCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	if err := NewWriter(path).Append(nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not exist, stat err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	w := NewWriter(path)

	if err := w.Remove(); err != nil {
		t.Fatalf("Remove on missing file: %v", err)
	}

	if err := w.Append([]domain.TradeRecord{record("AAPL", 10, 100, domain.TradeBuy)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := w.Remove(); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should be gone, stat err = %v", err)
	}
}
