// Package catalog adapts the externally owned product catalog into the
// read-only lookup the order core consumes. The core never writes to
// the catalog; a Registry is immutable for the lifetime of a report.
package catalog

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Registry maps a product name to its owning category and enumerates
// the known categories in display order.
type Registry interface {
	LookupCategory(productName string) (Category, bool)
	Categories() []Category
}

type Entry struct {
	Product    string
	CategoryID string
}

// StaticRegistry is a Registry over a fixed snapshot of the catalog.
type StaticRegistry struct {
	categories []Category
	byID       map[string]Category
	byProduct  map[string]Category
}

func NewStaticRegistry(categories []Category, entries []Entry) *StaticRegistry {
	r := &StaticRegistry{
		categories: categories,
		byID:       make(map[string]Category, len(categories)),
		byProduct:  make(map[string]Category, len(entries)),
	}
	for _, c := range categories {
		r.byID[c.ID] = c
	}
	for _, e := range entries {
		if c, ok := r.byID[e.CategoryID]; ok {
			r.byProduct[e.Product] = c
		}
	}
	return r
}

func (r *StaticRegistry) LookupCategory(productName string) (Category, bool) {
	c, ok := r.byProduct[productName]
	return c, ok
}

func (r *StaticRegistry) Categories() []Category {
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}
