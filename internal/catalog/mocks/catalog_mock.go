package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/product"
)

// MockCatalog serves a fixed product list and records lookups.
type MockCatalog struct {
	mu       sync.Mutex
	products []product.Product

	// Err, if set, is returned by every call
	Err error

	// For tracking calls in tests
	ProductsCalls int
	ProductCalls  []int
}

func NewMockCatalog(products ...product.Product) *MockCatalog {
	return &MockCatalog{products: products, ProductCalls: make([]int, 0)}
}

func (m *MockCatalog) Products(context.Context) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProductsCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.products, nil
}

func (m *MockCatalog) Product(_ context.Context, id int) (product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProductCalls = append(m.ProductCalls, id)
	if m.Err != nil {
		return product.Product{}, m.Err
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return product.Product{}, product.ErrProductNotFound
}

// SetProducts replaces the served catalog, e.g. to simulate a stock change.
func (m *MockCatalog) SetProducts(products ...product.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = products
}
