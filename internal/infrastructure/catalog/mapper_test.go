package catalog

import (
	"encoding/json"
	"testing"

	"github.com/saintathena/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestMapToProduct(t *testing.T) {
	tests := []struct {
		name string
		row  ProductRow
		want domain.Product
	}{
		{
			name: "complete row",
			row: ProductRow{
				ID:               json.RawMessage(`42`),
				Name:             " Tiger Prawns ",
				Description:      ptr("Large prawns"),
				Price:            18.5,
				SalePrice:        ptr(15.0),
				OnSale:           ptr(true),
				Category:         ptr("Seafood"),
				StockQuantity:    ptr(7),
				IsAvailable:      ptr(true),
				AlternativeNames: []string{"hipon"},
				SearchKeywords:   []string{"shrimp"},
			},
			want: domain.Product{
				ID:          "42",
				Name:        "Tiger Prawns",
				Description: "Large prawns",
				Category:    "Seafood",
				Price:       18.5,
				SalePrice:   ptr(15.0),
				OnSale:      true,
				Stock:       7,
				Available:   true,
				Aliases:     []string{"hipon"},
				Keywords:    []string{"shrimp"},
			},
		},
		{
			name: "missing availability defaults to available",
			row: ProductRow{
				ID:            json.RawMessage(`"uuid-1"`),
				Name:          "Tilapia",
				Price:         4,
				StockQuantity: ptr(3),
			},
			want: domain.Product{ID: "uuid-1", Name: "Tilapia", Price: 4, Stock: 3, Available: true},
		},
		{
			name: "missing stock is zero",
			row: ProductRow{
				ID:          json.RawMessage(`"uuid-2"`),
				Name:        "Squid",
				IsAvailable: ptr(false),
			},
			want: domain.Product{ID: "uuid-2", Name: "Squid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapToProduct(tt.row))
		})
	}
}

func TestMapProducts_SkipsUnnamedRows(t *testing.T) {
	rows := []ProductRow{
		{ID: json.RawMessage(`1`), Name: "Salmon"},
		{ID: json.RawMessage(`2`), Name: "   "},
	}

	products := MapProducts(rows)

	assert.Len(t, products, 1)
	assert.Equal(t, "Salmon", products[0].Name)
}

func TestParseID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"abc"`, "abc"},
		{`17`, "17"},
		{`1.5`, "1.5"},
		{``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseID(json.RawMessage(tt.raw)))
		})
	}
}
