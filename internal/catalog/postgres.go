package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Load reads the catalog tables into a StaticRegistry. The catalog is
// maintained by the admin console outside this service; we only read
// it once at startup.
func Load(ctx context.Context, db *sql.DB) (*StaticRegistry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, name
		FROM categories
		ORDER BY position, id
	`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}

	productRows, err := db.QueryContext(ctx, `
		SELECT name, category_id
		FROM products
	`)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer func() { _ = productRows.Close() }()

	var entries []Entry
	for productRows.Next() {
		var e Entry
		if err := productRows.Scan(&e.Product, &e.CategoryID); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		entries = append(entries, e)
	}
	if err := productRows.Err(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	return NewStaticRegistry(categories, entries), nil
}
