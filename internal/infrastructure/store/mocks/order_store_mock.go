package mocks

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/infrastructure/store"
)

// MockOrderStore is an in-memory implementation of store.OrderStore for
// testing. Update calls are serialised like row locks in the real store.
type MockOrderStore struct {
	mu       sync.Mutex
	orders   map[int64]*order.Order
	nextID   int64
	nextItem int64
	clock    time.Time

	// For tracking calls in tests
	CreateCalls []*order.Order
	UpdateCalls []int64
	DeleteCalls []int64

	CreateErr error
	UpdateErr error
	PingErr   error
}

var _ store.OrderStore = (*MockOrderStore)(nil)

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders: make(map[int64]*order.Order),
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *MockOrderStore) Create(_ context.Context, o *order.Order) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, clone(o))
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}

	created := clone(o)
	m.nextID++
	created.ID = m.nextID
	if created.Status == "" {
		created.Status = order.StatusPending
	}
	created.CreatedAt = m.tick()
	created.UpdatedAt = created.CreatedAt
	for i := range created.Items {
		m.nextItem++
		created.Items[i].ID = m.nextItem
		created.Items[i].OrderID = created.ID
		// derived fields are not stored
		created.Items[i].ProductName = ""
		created.Items[i].VendorID = 0
	}
	m.orders[created.ID] = created

	return clone(created), nil
}

func (m *MockOrderStore) Get(_ context.Context, id int64) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return clone(o), nil
}

func (m *MockOrderStore) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := m.byGatewayID(gatewayOrderID)
	if o == nil {
		return nil, order.ErrOrderNotFound
	}
	return clone(o), nil
}

func (m *MockOrderStore) List(_ context.Context) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.filter(func(*order.Order) bool { return true }), nil
}

func (m *MockOrderStore) FindByUser(_ context.Context, userID int64) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.filter(func(o *order.Order) bool { return o.UserID == userID }), nil
}

func (m *MockOrderStore) FindPaidByProducts(_ context.Context, productIDs []int64) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.filter(func(o *order.Order) bool {
		if o.Status != order.StatusPaid {
			return false
		}
		return slices.ContainsFunc(o.Items, func(it order.Item) bool {
			return slices.Contains(productIDs, it.ProductID)
		})
	}), nil
}

func (m *MockOrderStore) Update(_ context.Context, id int64, fn store.UpdateFunc) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls = append(m.UpdateCalls, id)
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}

	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return m.apply(o, fn)
}

func (m *MockOrderStore) UpdateByGatewayOrderID(_ context.Context, gatewayOrderID string, fn store.UpdateFunc) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}

	o := m.byGatewayID(gatewayOrderID)
	if o == nil {
		return nil, order.ErrOrderNotFound
	}
	m.UpdateCalls = append(m.UpdateCalls, o.ID)
	return m.apply(o, fn)
}

func (m *MockOrderStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls = append(m.DeleteCalls, id)
	if _, ok := m.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MockOrderStore) Ping(context.Context) error {
	return m.PingErr
}

// Put stores an order as-is, for seeding tests
func (m *MockOrderStore) Put(o *order.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.orders[o.ID] = clone(o)
	m.nextID = max(m.nextID, o.ID)
	for _, it := range o.Items {
		m.nextItem = max(m.nextItem, it.ID)
	}
}

// apply runs fn on a copy and keeps the copy only when fn succeeds. The
// gateway order id is never overwritten once set.
func (m *MockOrderStore) apply(current *order.Order, fn store.UpdateFunc) (*order.Order, error) {
	working := clone(current)
	if err := fn(working); err != nil {
		return nil, err
	}
	if current.GatewayOrderID != nil {
		id := *current.GatewayOrderID
		working.GatewayOrderID = &id
	}
	working.UpdatedAt = m.tick()

	saved := clone(working)
	for i := range saved.Items {
		saved.Items[i].ProductName = ""
		saved.Items[i].VendorID = 0
	}
	m.orders[current.ID] = saved
	return working, nil
}

func (m *MockOrderStore) byGatewayID(gatewayOrderID string) *order.Order {
	for _, o := range m.orders {
		if o.GatewayOrderID != nil && *o.GatewayOrderID == gatewayOrderID {
			return o
		}
	}
	return nil
}

// filter returns copies of matching orders, newest first
func (m *MockOrderStore) filter(keep func(*order.Order) bool) []*order.Order {
	var result []*order.Order
	for _, o := range m.orders {
		if keep(o) {
			result = append(result, clone(o))
		}
	}
	slices.SortFunc(result, func(a, b *order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return result
}

func (m *MockOrderStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func clone(o *order.Order) *order.Order {
	c := *o
	c.Items = slices.Clone(o.Items)
	if o.GatewayOrderID != nil {
		id := *o.GatewayOrderID
		c.GatewayOrderID = &id
	}
	if o.PaymentID != nil {
		id := *o.PaymentID
		c.PaymentID = &id
	}
	return &c
}
