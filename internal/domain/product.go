package domain

// Product is a catalog record as supplied by the catalog source. The core never mutates it.
type Product struct {
	ID          string   `json:"id" yaml:"id" msgpack:"id"`
	Name        string   `json:"name" yaml:"name" msgpack:"name"`
	Description string   `json:"description,omitempty" yaml:"description" msgpack:"description,omitempty"`
	Category    string   `json:"category" yaml:"category" msgpack:"category"`
	Price       float64  `json:"price" yaml:"price" msgpack:"price"`
	SalePrice   *float64 `json:"salePrice,omitempty" yaml:"sale_price" msgpack:"salePrice,omitempty"`
	OnSale      bool     `json:"onSale,omitempty" yaml:"on_sale" msgpack:"onSale,omitempty"`
	Stock       int      `json:"stock" yaml:"stock" msgpack:"stock"`
	Available   bool     `json:"available" yaml:"available" msgpack:"available"`
	Aliases     []string `json:"aliases,omitempty" yaml:"aliases" msgpack:"aliases,omitempty"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords" msgpack:"keywords,omitempty"`
}

// Sellable reports whether the product is available and has stock on hand
func (p Product) Sellable() bool {
	return p.Available && p.Stock > 0
}

// EffectivePrice returns the sale price when the product is on sale, otherwise the list price
func (p Product) EffectivePrice() float64 {
	if p.OnSale && p.SalePrice != nil && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// NormalizedText is the canonical, comparable form of a source string.
// Text is the tokens joined by single spaces.
type NormalizedText struct {
	Text   string
	Tokens []string
}

// Empty reports whether normalization produced no tokens
func (n NormalizedText) Empty() bool {
	return len(n.Tokens) == 0
}
