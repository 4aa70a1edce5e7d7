package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"ngcommerce-analytics/models"
)

// PostgresWriter persists processed products to PostgreSQL for the
// dashboard's filtering and export queries.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS products (
			id               SERIAL PRIMARY KEY,
			product_name     TEXT          NOT NULL,
			price            NUMERIC(12,2) NOT NULL DEFAULT 0,
			category         VARCHAR(50)   NOT NULL,
			orig_category    TEXT          NOT NULL DEFAULT '',
			source           VARCHAR(50)   NOT NULL,
			collected_at     TIMESTAMPTZ   NOT NULL,
			rating           NUMERIC(4,2)  NOT NULL DEFAULT 0,
			review_count     INT           NOT NULL DEFAULT 0,
			view_count       INT           NOT NULL DEFAULT 0,
			discount_percent NUMERIC(5,2)  NOT NULL DEFAULT 0,
			is_bestseller    BOOLEAN       NOT NULL DEFAULT FALSE,
			is_featured      BOOLEAN       NOT NULL DEFAULT FALSE,
			availability     TEXT          NOT NULL DEFAULT '',
			brand            TEXT          NOT NULL DEFAULT '',
			url              TEXT          NOT NULL DEFAULT '',
			sales_rank       NUMERIC(10,4) NOT NULL DEFAULT 0,
			unit_value       NUMERIC(12,3) NOT NULL DEFAULT 0,
			unit             VARCHAR(10)   NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
		CREATE INDEX IF NOT EXISTS idx_products_source   ON products(source);
		CREATE INDEX IF NOT EXISTS idx_products_price    ON products(price);
		CREATE INDEX IF NOT EXISTS idx_products_rating   ON products(rating);
	`)
	return err
}

// Clear deletes all existing products from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM products")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// Write batch-inserts the processed batch, clearing old data first — the
// table mirrors the latest snapshot, while the CSV ledger keeps history.
func (pw *PostgresWriter) Write(products []*models.Product) error {
	if len(products) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		if err := pw.insertBatch(products[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.Product) error {
	const cols = 18
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, p := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for c := 0; c < cols; c++ {
			placeholders[c] = fmt.Sprintf("$%d", base+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			p.ProductName, p.Price, p.Category, p.OrigCategory, p.Source,
			p.Timestamp, p.Rating, p.ReviewCount, p.ViewCount,
			p.DiscountPercent, p.IsBestseller, p.IsFeatured, p.Availability,
			p.Brand, p.URL, p.SalesRank, p.Unit.Value, p.Unit.Unit)
	}

	query := fmt.Sprintf(`
		INSERT INTO products (
			product_name, price, category, orig_category, source,
			collected_at, rating, review_count, view_count, discount_percent,
			is_bestseller, is_featured, availability, brand, url,
			sales_rank, unit_value, unit
		)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored products — used by the insight service.
func (pw *PostgresWriter) FetchAll() ([]*models.Product, error) {
	rows, err := pw.db.Query(`
		SELECT product_name, price, category, orig_category, source,
		       collected_at, rating, review_count, view_count, discount_percent,
		       is_bestseller, is_featured, availability, brand, url,
		       sales_rank, unit_value, unit
		FROM products
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(
			&p.ProductName, &p.Price, &p.Category, &p.OrigCategory, &p.Source,
			&p.Timestamp, &p.Rating, &p.ReviewCount, &p.ViewCount, &p.DiscountPercent,
			&p.IsBestseller, &p.IsFeatured, &p.Availability, &p.Brand, &p.URL,
			&p.SalesRank, &p.Unit.Value, &p.Unit.Unit,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
