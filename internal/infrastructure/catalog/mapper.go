package catalog

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/saintathena/backend/internal/domain"
)

// ProductRow is one row of the products table as returned by PostgREST
type ProductRow struct {
	ID               json.RawMessage `json:"id"`
	Name             string          `json:"name"`
	Description      *string         `json:"description"`
	Price            float64         `json:"price"`
	SalePrice        *float64        `json:"sale_price"`
	OnSale           *bool           `json:"on_sale"`
	Category         *string         `json:"category"`
	StockQuantity    *int            `json:"stock_quantity"`
	IsAvailable      *bool           `json:"is_available"`
	AlternativeNames []string        `json:"alternative_names"`
	SearchKeywords   []string        `json:"search_keywords"`
}

// MapProducts converts table rows to domain products, skipping rows without a name
func MapProducts(rows []ProductRow) []domain.Product {
	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		products = append(products, MapToProduct(row))
	}
	return products
}

// MapToProduct converts one row. A missing is_available column counts as available;
// a missing stock_quantity counts as zero stock.
func MapToProduct(row ProductRow) domain.Product {
	p := domain.Product{
		ID:        parseID(row.ID),
		Name:      strings.TrimSpace(row.Name),
		Price:     row.Price,
		SalePrice: row.SalePrice,
		Available: true,
		Aliases:   row.AlternativeNames,
		Keywords:  row.SearchKeywords,
	}
	if row.Description != nil {
		p.Description = *row.Description
	}
	if row.Category != nil {
		p.Category = *row.Category
	}
	if row.StockQuantity != nil {
		p.Stock = *row.StockQuantity
	}
	if row.IsAvailable != nil {
		p.Available = *row.IsAvailable
	}
	if row.OnSale != nil {
		p.OnSale = *row.OnSale
	}
	return p
}

// parseID accepts string (uuid) and numeric ids
func parseID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return strings.Trim(string(raw), `"`)
}
