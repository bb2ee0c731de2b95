package catalog

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/saintathena/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile is the layout of a YAML (or JSON) catalog file
type catalogFile struct {
	Products []domain.Product `yaml:"products"`
}

// FileSource serves products from a local YAML/JSON file, reloading when the file changes
type FileSource struct {
	path     string
	mu       sync.Mutex
	modTime  time.Time
	size     int64
	products []domain.Product
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// ListProducts returns a copy of the products in the file
func (f *FileSource) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return nil, fmt.Errorf("stat catalog file: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.products == nil || !info.ModTime().Equal(f.modTime) || info.Size() != f.size {
		products, err := LoadFile(f.path)
		if err != nil {
			return nil, err
		}
		f.products = products
		f.modTime = info.ModTime()
		f.size = info.Size()
	}
	return slices.Clone(f.products), nil
}

// LoadFile parses a catalog file. Products default to available unless the file says otherwise.
func LoadFile(path string) ([]domain.Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML/JSON content
func Parse(data []byte) ([]domain.Product, error) {
	var raw struct {
		Products []yaml.Node `yaml:"products"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(raw.Products))
	for i, node := range raw.Products {
		p := domain.Product{Available: true}
		if err := node.Decode(&p); err != nil {
			return nil, fmt.Errorf("parse catalog product %d: %w", i, err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("parse catalog product %d: name is required", i)
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("item-%d", i+1)
		}
		products = append(products, p)
	}
	return products, nil
}
