package mocks

import (
	"context"
	"sync"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/readmodel"
	"github.com/shopspring/decimal"
)

// MockCatalog is an in-memory product and user catalog for testing
type MockCatalog struct {
	mu       sync.RWMutex
	products map[int64]*readmodel.ProductReadModel
	users    map[int64]*readmodel.UserReadModel

	ProductErr error
	UserErr    error
}

// NewMockCatalog creates a new MockCatalog
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		products: make(map[int64]*readmodel.ProductReadModel),
		users:    make(map[int64]*readmodel.UserReadModel),
	}
}

// AddProduct registers a product with a price given as a decimal string
func (m *MockCatalog) AddProduct(id int64, name, price string, vendorID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.products[id] = &readmodel.ProductReadModel{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		VendorID: vendorID,
	}
}

// SetPrice changes the current catalog price of a product
func (m *MockCatalog) SetPrice(id int64, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.products[id]; ok {
		p.Price = decimal.RequireFromString(price)
	}
}

func (m *MockCatalog) AddUser(id int64, firstName, lastName, email string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[id] = &readmodel.UserReadModel{ID: id, FirstName: firstName, LastName: lastName, Email: email}
}

func (m *MockCatalog) Product(_ context.Context, id int64) (*readmodel.ProductReadModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ProductErr != nil {
		return nil, m.ProductErr
	}
	p, ok := m.products[id]
	if !ok {
		return nil, order.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockCatalog) Products(_ context.Context, ids []int64) (map[int64]*readmodel.ProductReadModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ProductErr != nil {
		return nil, m.ProductErr
	}
	result := make(map[int64]*readmodel.ProductReadModel, len(ids))
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := *p
			result[id] = &cp
		}
	}
	return result, nil
}

func (m *MockCatalog) ProductIDsByVendor(_ context.Context, vendorID int64) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int64
	for id, p := range m.products {
		if p.VendorID == vendorID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockCatalog) User(_ context.Context, id int64) (*readmodel.UserReadModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.UserErr != nil {
		return nil, m.UserErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, order.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
