package catalog

import (
	"context"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront/internal/domain"
)

// fakeStore mirrors the foreign keys of the real schema: products need an
// existing category and block its deletion.
type fakeStore struct {
	mu         sync.Mutex
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	nextID     int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
	}
}

func (f *fakeStore) ListCategories(context.Context) ([]domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) FindCategoryByName(_ context.Context, name string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c *domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c.ID = f.nextID
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeStore) UpdateCategory(_ context.Context, c *domain.Category) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		return false, nil
	}
	f.categories[c.ID] = *c
	return true, nil
}

func (f *fakeStore) DeleteCategory(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return false, nil
	}
	for _, p := range f.products {
		if p.CategoryID == id {
			return false, &pq.Error{Code: "23503"}
		}
	}
	delete(f.categories, id)
	return true, nil
}

func (f *fakeStore) ListProducts(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Product{}
	for _, p := range f.products {
		p.CategoryName = f.categories[p.CategoryID].Name
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	p.CategoryName = f.categories[p.CategoryID].Name
	return &p, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[p.CategoryID]; !ok {
		return &pq.Error{Code: "23503"}
	}
	f.nextID++
	p.ID = f.nextID
	f.products[p.ID] = *p
	return nil
}

func (f *fakeStore) AddStock(_ context.Context, productID int64, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return false, nil
	}
	if int64(p.Stock)+int64(quantity) > math.MaxInt32 {
		return false, &pq.Error{Code: "22003", Message: "integer out of range"}
	}
	p.Stock += quantity
	f.products[productID] = p
	return true, nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return false, nil
	}
	delete(f.products, id)
	return true, nil
}

type fakeImageStore struct {
	saved   map[string]string
	removed []string
}

func (f *fakeImageStore) Save(_ context.Context, filename string, src io.Reader) (string, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return "", err
	}
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	path := "/images/fixed_" + filename
	f.saved[path] = string(data)
	return path, nil
}

func (f *fakeImageStore) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *fakeStore, *fakeImageStore) {
	store := newFakeStore()
	images := &fakeImageStore{}
	return NewService(store, images, discardLogger()), store, images
}
