package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type fakeState struct {
	products map[int64]domain.Product
	carts    map[int64][]domain.CartLine
	orders   []domain.Order
	nextID   int64
}

func (s fakeState) clone() fakeState {
	out := fakeState{
		products: make(map[int64]domain.Product, len(s.products)),
		carts:    make(map[int64][]domain.CartLine, len(s.carts)),
		orders:   append([]domain.Order(nil), s.orders...),
		nextID:   s.nextID,
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	for k, v := range s.carts {
		out.carts[k] = append([]domain.CartLine(nil), v...)
	}
	return out
}

// fakeStore applies a transaction to a copy of its state and swaps it in on
// success, so a failed checkout leaves nothing behind.
type fakeStore struct {
	mu        sync.Mutex
	state     fakeState
	failClear error
}

func newFakeStore(products ...domain.Product) *fakeStore {
	f := &fakeStore{state: fakeState{
		products: make(map[int64]domain.Product),
		carts:    make(map[int64][]domain.CartLine),
	}}
	for _, p := range products {
		f.state.products[p.ID] = p
	}
	return f
}

func (f *fakeStore) addToCart(userID, productID int64, quantity int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.nextID++
	f.state.carts[userID] = append(f.state.carts[userID], domain.CartLine{
		ID: f.state.nextID, UserID: userID, ProductID: productID, Quantity: quantity,
	})
}

func (f *fakeStore) stock(productID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.products[productID].Stock
}

func (f *fakeStore) cartSize(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.state.carts[userID])
}

func (f *fakeStore) InTx(_ context.Context, fn func(CheckoutTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := &fakeTx{state: f.state.clone(), failClear: f.failClear}
	if err := fn(tx); err != nil {
		return err
	}
	f.state = tx.state
	return nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Order{}
	for _, o := range f.state.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakeTx struct {
	state     fakeState
	failClear error
}

func (t *fakeTx) CartLines(_ context.Context, userID int64) ([]domain.CartLine, error) {
	var out []domain.CartLine
	for _, l := range t.state.carts[userID] {
		p := t.state.products[l.ProductID]
		l.ProductName, l.Price, l.ImageURL = p.Name, p.Price, p.ImageURL
		out = append(out, l)
	}
	return out, nil
}

func (t *fakeTx) InsertOrder(_ context.Context, order *domain.Order) error {
	t.state.nextID++
	order.ID = t.state.nextID
	t.state.orders = append(t.state.orders, *order)
	return nil
}

func (t *fakeTx) DecrementStock(_ context.Context, productID int64, quantity int) error {
	p, ok := t.state.products[productID]
	if !ok || p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	t.state.products[productID] = p
	return nil
}

func (t *fakeTx) ClearCart(_ context.Context, userID int64) error {
	if t.failClear != nil {
		return t.failClear
	}
	delete(t.state.carts, userID)
	return nil
}

type publishedEvent struct {
	key   string
	event any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{key: key, event: event})
	return nil
}

type fakeRecorder struct {
	placed   int
	revenue  decimal.Decimal
	failures []string
}

func (r *fakeRecorder) OrderPlaced(_ context.Context, total decimal.Decimal, _ int) {
	r.placed++
	r.revenue = r.revenue.Add(total)
}

func (r *fakeRecorder) CheckoutFailed(_ context.Context, reason string) {
	r.failures = append(r.failures, reason)
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Studio Monitor", Price: decimal.RequireFromString("1500000"), Stock: 5},
		{ID: 2, Name: "Bookshelf Speaker", Price: decimal.RequireFromString("250000.50"), Stock: 1},
	}
}
