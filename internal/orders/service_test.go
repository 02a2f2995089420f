package orders

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
)

var customer = auth.Principal{UserID: 7, Role: domain.RoleCustomer, Email: "ayu@example.com", Name: "Ayu"}

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()

	t.Run("places an order and clears the cart", func(t *testing.T) {
		store := newFakeStore(testProducts()...)
		store.addToCart(customer.UserID, 1, 2)
		store.addToCart(customer.UserID, 2, 1)
		publisher := &fakePublisher{}
		recorder := &fakeRecorder{}

		svc := NewService(store, publisher, recorder, discardLogger())
		fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))
		svc.now = func() time.Time { return fixed }

		order, err := svc.Checkout(ctx, customer)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !order.TotalAmount.Equal(decimal.RequireFromString("3250000.50")) {
			t.Errorf("unexpected total: %s", order.TotalAmount)
		}
		if order.Status != domain.OrderStatusCompleted {
			t.Errorf("unexpected status: %s", order.Status)
		}
		if !order.OrderDate.Equal(fixed) || order.OrderDate.Location() != time.UTC {
			t.Errorf("expected UTC order date, got %v", order.OrderDate)
		}
		if len(order.Items) != 2 || order.Items[0].ProductName != "Studio Monitor" || *order.Items[0].ProductID != 1 {
			t.Errorf("unexpected lines: %+v", order.Items)
		}

		if store.stock(1) != 3 || store.stock(2) != 0 {
			t.Errorf("unexpected stock: %d %d", store.stock(1), store.stock(2))
		}
		if store.cartSize(customer.UserID) != 0 {
			t.Error("expected cart to be cleared")
		}

		if recorder.placed != 1 || !recorder.revenue.Equal(order.TotalAmount) {
			t.Errorf("unexpected recorder state: %+v", recorder)
		}
		if len(publisher.events) != 1 {
			t.Fatalf("expected one published event, got %d", len(publisher.events))
		}
		event, ok := publisher.events[0].event.(domain.OrderPlacedEvent)
		if !ok {
			t.Fatalf("unexpected event type %T", publisher.events[0].event)
		}
		if event.EventID == "" || event.OrderID != order.ID || event.Email != customer.Email || len(event.Items) != 2 {
			t.Errorf("unexpected event: %+v", event)
		}
		if publisher.events[0].key != strconv.FormatInt(order.ID, 10) {
			t.Errorf("expected event keyed by order id, got %q", publisher.events[0].key)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		store := newFakeStore(testProducts()...)
		publisher := &fakePublisher{}
		recorder := &fakeRecorder{}
		svc := NewService(store, publisher, recorder, discardLogger())

		_, err := svc.Checkout(ctx, customer)
		if apperr.KindOf(err) != apperr.KindValidation || apperr.Message(err) != "Cart is empty." {
			t.Fatalf("expected empty cart error, got %v", err)
		}

		orders, _ := svc.Mine(ctx, customer.UserID)
		if len(orders) != 0 {
			t.Error("expected no order to be written")
		}
		if len(publisher.events) != 0 {
			t.Error("expected no event")
		}
		if len(recorder.failures) != 1 || recorder.failures[0] != "validation" {
			t.Errorf("unexpected failures: %v", recorder.failures)
		}
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		store := newFakeStore(testProducts()...)
		store.addToCart(customer.UserID, 1, 2)
		store.addToCart(customer.UserID, 2, 3)
		svc := NewService(store, nil, nil, discardLogger())

		_, err := svc.Checkout(ctx, customer)
		if apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
		if apperr.Message(err) != "Insufficient stock for Bookshelf Speaker." {
			t.Errorf("unexpected message: %q", apperr.Message(err))
		}
		if !errors.Is(err, ErrInsufficientStock) {
			t.Error("expected error to wrap ErrInsufficientStock")
		}

		if store.stock(1) != 5 || store.stock(2) != 1 {
			t.Errorf("expected stock to be untouched, got %d %d", store.stock(1), store.stock(2))
		}
		if store.cartSize(customer.UserID) != 2 {
			t.Error("expected cart to be kept")
		}
		orders, _ := svc.Mine(ctx, customer.UserID)
		if len(orders) != 0 {
			t.Error("expected no order to be written")
		}
	})

	t.Run("storage failure is internal", func(t *testing.T) {
		store := newFakeStore(testProducts()...)
		store.addToCart(customer.UserID, 1, 1)
		store.failClear = errBoom
		svc := NewService(store, nil, nil, discardLogger())

		_, err := svc.Checkout(ctx, customer)
		if apperr.KindOf(err) != apperr.KindInternal || !errors.Is(err, errBoom) {
			t.Fatalf("expected internal error, got %v", err)
		}
		if store.stock(1) != 5 {
			t.Error("expected stock to be untouched")
		}
	})

	t.Run("publish failure does not fail checkout", func(t *testing.T) {
		store := newFakeStore(testProducts()...)
		store.addToCart(customer.UserID, 1, 1)
		svc := NewService(store, &fakePublisher{err: errBoom}, nil, discardLogger())

		if _, err := svc.Checkout(ctx, customer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.stock(1) != 4 {
			t.Errorf("expected committed stock 4, got %d", store.stock(1))
		}
	})
}

func TestService_Mine(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(testProducts()...)
	svc := NewService(store, nil, nil, discardLogger())

	for i := 0; i < 2; i++ {
		store.addToCart(customer.UserID, 1, 1)
		if _, err := svc.Checkout(ctx, customer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	store.addToCart(99, 1, 1)
	if _, err := svc.Checkout(ctx, auth.Principal{UserID: 99}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders, err := svc.Mine(ctx, customer.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID < orders[1].ID {
		t.Error("expected newest order first")
	}
}

func TestService_MineKeepsPurchasePrices(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(testProducts()...)
	svc := NewService(store, nil, nil, discardLogger())

	store.addToCart(customer.UserID, 1, 2)
	store.addToCart(customer.UserID, 2, 1)
	if _, err := svc.Checkout(ctx, customer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.mu.Lock()
	for id, p := range store.state.products {
		p.Price = decimal.RequireFromString("9999999")
		store.state.products[id] = p
	}
	store.mu.Unlock()

	orders, err := svc.Mine(ctx, customer.UserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 2 {
		t.Fatalf("unexpected orders: %+v", orders)
	}
	if !orders[0].TotalAmount.Equal(decimal.RequireFromString("3250000.50")) {
		t.Errorf("expected total at purchase time, got %s", orders[0].TotalAmount)
	}
	for _, line := range orders[0].Items {
		want := map[int64]string{1: "1500000", 2: "250000.50"}[*line.ProductID]
		if !line.Price.Equal(decimal.RequireFromString(want)) {
			t.Errorf("product %d: expected price %s, got %s", *line.ProductID, want, line.Price)
		}
	}
}
