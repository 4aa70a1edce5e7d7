package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"ngcommerce-analytics/models"
	"ngcommerce-analytics/utils"
)

var snapshotHeader = []string{
	"product_name", "price", "category", "orig_category", "source",
	"timestamp", "rating", "review_count", "view_count", "discount_percent",
	"is_bestseller", "is_featured", "availability", "brand", "url",
	"sales_rank", "unit_value", "unit",
}

// SnapshotStore persists the latest processed batch to a CSV file the
// dashboard and export layers read directly. Unlike the ledger it is a
// point-in-time snapshot: merging keeps only the most recent row per
// (product_name, source) pair.
type SnapshotStore struct {
	path   string
	logger *utils.Logger
}

// NewSnapshotStore creates a SnapshotStore persisting to path.
func NewSnapshotStore(path string, logger *utils.Logger) *SnapshotStore {
	return &SnapshotStore{path: path, logger: logger}
}

// Save overwrites the snapshot with the given products and drops a small
// JSON sample next to it for debugging.
func (s *SnapshotStore) Save(products []*models.Product) error {
	if len(products) == 0 {
		s.logger.Warn("[snapshot] No data to save")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("snapshot: create data dir: %w", err)
	}

	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("snapshot: create file %q: %w", s.path, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(snapshotHeader); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	for _, p := range products {
		if err := writer.Write(snapshotRow(p)); err != nil {
			return fmt.Errorf("snapshot: write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("snapshot: flush: %w", err)
	}

	s.saveSample(products)
	s.logger.Info("[snapshot] Saved %d products to %s", len(products), s.path)
	return nil
}

// saveSample writes the first 10 products as indented JSON for quick
// eyeballing. Failures are logged, never propagated.
func (s *SnapshotStore) saveSample(products []*models.Product) {
	sample := products
	if len(sample) > 10 {
		sample = sample[:10]
	}

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		s.logger.Warn("[snapshot] Could not marshal sample: %v", err)
		return
	}

	samplePath := filepath.Join(filepath.Dir(s.path), "sample_products.json")
	if err := os.WriteFile(samplePath, data, 0644); err != nil {
		s.logger.Warn("[snapshot] Could not write sample file: %v", err)
	}
}

// Load reads the current snapshot. A missing file yields an empty result.
func (s *SnapshotStore) Load() ([]*models.Product, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: open: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot: read header: %w", err)
	}

	var products []*models.Product
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn("[snapshot] Skipping unreadable row: %v", err)
			continue
		}
		if len(row) < len(snapshotHeader) {
			s.logger.Warn("[snapshot] Skipping short row (%d fields)", len(row))
			continue
		}

		ts, err := time.Parse(time.RFC3339, row[5])
		if err != nil {
			ts = time.Time{}
		}

		products = append(products, &models.Product{
			ProductName:     row[0],
			Price:           parseFloat(row[1]),
			Category:        row[2],
			OrigCategory:    row[3],
			Source:          row[4],
			Timestamp:       ts,
			Rating:          parseFloat(row[6]),
			ReviewCount:     parseInt(row[7]),
			ViewCount:       parseInt(row[8]),
			DiscountPercent: parseFloat(row[9]),
			IsBestseller:    row[10] == "true",
			IsFeatured:      row[11] == "true",
			Availability:    row[12],
			Brand:           row[13],
			URL:             row[14],
			SalesRank:       parseFloat(row[15]),
			Unit: models.UnitInfo{
				Value: parseFloat(row[16]),
				Unit:  row[17],
			},
		})
	}

	return products, nil
}

// Merge combines a new batch with the existing snapshot, keeping the most
// recent record per (product_name, source) pair. The merged result is
// returned; callers decide whether to Save it.
func (s *SnapshotStore) Merge(newProducts []*models.Product) []*models.Product {
	if len(newProducts) == 0 {
		s.logger.Warn("[snapshot] No new data to merge")
		existing, err := s.Load()
		if err != nil {
			s.logger.Error("[snapshot] Merge load failed: %v", err)
			return nil
		}
		return existing
	}

	existing, err := s.Load()
	if err != nil {
		s.logger.Error("[snapshot] Merge load failed, keeping new batch only: %v", err)
		return newProducts
	}
	if len(existing) == 0 {
		return newProducts
	}

	merged := append(append([]*models.Product{}, existing...), newProducts...)

	// Most recent first, then first-wins per key.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})

	type productKey struct{ name, source string }
	seen := make(map[productKey]struct{}, len(merged))
	result := make([]*models.Product, 0, len(merged))
	for _, p := range merged {
		key := productKey{p.ProductName, p.Source}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, p)
	}

	return result
}

func snapshotRow(p *models.Product) []string {
	return []string{
		p.ProductName,
		formatFloat(p.Price),
		p.Category,
		p.OrigCategory,
		p.Source,
		p.Timestamp.Format(time.RFC3339),
		formatFloat(p.Rating),
		strconv.Itoa(p.ReviewCount),
		strconv.Itoa(p.ViewCount),
		formatFloat(p.DiscountPercent),
		strconv.FormatBool(p.IsBestseller),
		strconv.FormatBool(p.IsFeatured),
		p.Availability,
		p.Brand,
		p.URL,
		formatFloat(p.SalesRank),
		formatFloat(p.Unit.Value),
		p.Unit.Unit,
	}
}
