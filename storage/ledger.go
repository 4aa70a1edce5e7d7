package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

// ledgerHeader defines the ledger's column layout. The file is plain
// delimited text so the trend UI can read it directly.
var ledgerHeader = []string{
	"recorded_at", "product_name", "price", "category", "orig_category",
	"source", "timestamp", "rating", "review_count", "view_count",
	"discount_percent", "is_bestseller", "is_featured", "availability",
	"brand", "url", "sales_rank", "unit_value", "unit",
}

// Ledger is the append-only, time-windowed historical product store. Every
// pipeline run appends its processed batch; entries older than the
// retention window are pruned on each write. The ledger is a time series,
// not a deduplicated snapshot — repeated (product, source) pairs
// accumulate, one per collection run.
type Ledger struct {
	path      string
	retention time.Duration
	logger    *utils.Logger
}

// NewLedger creates a Ledger persisting to path with the given retention
// window in days.
func NewLedger(path string, retentionDays int, logger *utils.Logger) *Ledger {
	return &Ledger{
		path:      path,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// Append records a processed batch at the given collection time, then
// drops every entry older than the retention window. The rewrite goes
// through a temp file and rename so a crashed run cannot leave a
// half-written ledger behind.
func (l *Ledger) Append(products []*models.Product, now time.Time) error {
	if len(products) == 0 {
		l.logger.Warn("[ledger] No products to append")
		return nil
	}

	entries, err := l.Load()
	if err != nil {
		// A corrupt ledger should not abort the batch; start fresh.
		l.logger.Error("[ledger] Could not load existing ledger, starting fresh: %v", err)
		entries = nil
	}

	for _, p := range products {
		entries = append(entries, models.LedgerEntry{Product: *p, RecordedAt: now})
	}

	cutoff := now.Add(-l.retention)
	kept := entries[:0]
	for _, e := range entries {
		if e.RecordedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}

	if err := l.writeAll(kept); err != nil {
		return fmt.Errorf("ledger: %w", err)
	}

	l.logger.Info("[ledger] Appended %d entries, retained %d of %d after pruning",
		len(products), len(kept), len(entries))
	return nil
}

// Load reads the full ledger. A missing file yields an empty history.
// Malformed rows are skipped with a warning rather than failing the read.
func (l *Ledger) Load() ([]models.LedgerEntry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger: read header: %w", err)
	}

	var entries []models.LedgerEntry
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			l.logger.Warn("[ledger] Skipping unreadable row %d: %v", line, err)
			continue
		}

		entry, ok := l.parseRow(row)
		if !ok {
			l.logger.Warn("[ledger] Skipping malformed row %d", line)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (l *Ledger) parseRow(row []string) (models.LedgerEntry, bool) {
	if len(row) < len(ledgerHeader) {
		return models.LedgerEntry{}, false
	}

	recordedAt, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return models.LedgerEntry{}, false
	}
	timestamp, err := time.Parse(time.RFC3339, row[6])
	if err != nil {
		timestamp = recordedAt
	}

	entry := models.LedgerEntry{
		Product: models.Product{
			ProductName:     row[1],
			Price:           parseFloat(row[2]),
			Category:        row[3],
			OrigCategory:    row[4],
			Source:          row[5],
			Timestamp:       timestamp,
			Rating:          parseFloat(row[7]),
			ReviewCount:     parseInt(row[8]),
			ViewCount:       parseInt(row[9]),
			DiscountPercent: parseFloat(row[10]),
			IsBestseller:    row[11] == "true",
			IsFeatured:      row[12] == "true",
			Availability:    row[13],
			Brand:           row[14],
			URL:             row[15],
			SalesRank:       parseFloat(row[16]),
			Unit: models.UnitInfo{
				Value: parseFloat(row[17]),
				Unit:  row[18],
			},
		},
		RecordedAt: recordedAt,
	}
	return entry, true
}

// writeAll atomically replaces the ledger file with the given entries.
func (l *Ledger) writeAll(entries []models.LedgerEntry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), "ledger-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	writer := csv.NewWriter(tmp)
	if err := writer.Write(ledgerHeader); err != nil {
		tmp.Close()
		return fmt.Errorf("write header: %w", err)
	}

	for _, e := range entries {
		row := []string{
			e.RecordedAt.Format(time.RFC3339),
			e.ProductName,
			formatFloat(e.Price),
			e.Category,
			e.OrigCategory,
			e.Source,
			e.Timestamp.Format(time.RFC3339),
			formatFloat(e.Rating),
			strconv.Itoa(e.ReviewCount),
			strconv.Itoa(e.ViewCount),
			formatFloat(e.DiscountPercent),
			strconv.FormatBool(e.IsBestseller),
			strconv.FormatBool(e.IsFeatured),
			e.Availability,
			e.Brand,
			e.URL,
			formatFloat(e.SalesRank),
			formatFloat(e.Unit.Value),
			e.Unit.Unit,
		}
		if err := writer.Write(row); err != nil {
			tmp.Close()
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
