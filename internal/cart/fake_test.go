package cart

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	products map[int64]domain.Product
	lines    []domain.CartLine
	nextID   int64
}

func newFakeStore(products ...domain.Product) *fakeStore {
	f := &fakeStore{products: make(map[int64]domain.Product)}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]domain.CartLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.CartLine{}
	for _, l := range f.lines {
		if l.UserID != userID {
			continue
		}
		p := f.products[l.ProductID]
		l.ProductName, l.ImageURL, l.Price = p.Name, p.ImageURL, p.Price
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ProductExists(_ context.Context, productID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.products[productID]
	return ok, nil
}

func (f *fakeStore) Upsert(_ context.Context, userID, productID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.lines {
		if f.lines[i].UserID == userID && f.lines[i].ProductID == productID {
			if int64(f.lines[i].Quantity)+int64(quantity) > math.MaxInt32 {
				return &pq.Error{Code: "22003", Message: "integer out of range"}
			}
			f.lines[i].Quantity += quantity
			return nil
		}
	}
	f.nextID++
	f.lines = append(f.lines, domain.CartLine{ID: f.nextID, UserID: userID, ProductID: productID, Quantity: quantity})
	return nil
}

func (f *fakeStore) DeleteOwned(_ context.Context, userID, lineID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.lines {
		if l.ID == lineID && l.UserID == userID {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Studio Monitor", Price: decimal.RequireFromString("1500000"), Stock: 5, ImageURL: "/images/a.png"},
		{ID: 2, Name: "Bookshelf Speaker", Price: decimal.RequireFromString("250000.50"), Stock: 2, ImageURL: "/images/b.png"},
	}
}
