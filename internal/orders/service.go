package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type CheckoutStore interface {
	InTx(ctx context.Context, fn func(CheckoutTx) error) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
}

// CheckoutTx is the set of writes a checkout performs inside one transaction.
// DecrementStock returns ErrInsufficientStock when the guard fails.
type CheckoutTx interface {
	CartLines(ctx context.Context, userID int64) ([]domain.CartLine, error)
	InsertOrder(ctx context.Context, order *domain.Order) error
	DecrementStock(ctx context.Context, productID int64, quantity int) error
	ClearCart(ctx context.Context, userID int64) error
}

type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Recorder interface {
	OrderPlaced(ctx context.Context, total decimal.Decimal, lines int)
	CheckoutFailed(ctx context.Context, reason string)
}

type Service struct {
	store     CheckoutStore
	publisher Publisher
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the checkout service. publisher and recorder may be nil.
func NewService(store CheckoutStore, publisher Publisher, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Mine(ctx context.Context, userID int64) ([]domain.Order, error) {
	orders, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Checkout turns the customer's cart into a completed order. Stock is
// decremented and the cart cleared in the same transaction; any failure
// leaves all three untouched.
func (s *Service) Checkout(ctx context.Context, customer auth.Principal) (*domain.Order, error) {
	var order *domain.Order

	err := s.store.InTx(ctx, func(tx CheckoutTx) error {
		lines, err := tx.CartLines(ctx, customer.UserID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(lines) == 0 {
			return apperr.Validation("Cart is empty.")
		}

		order = newOrder(customer.UserID, s.now().UTC(), lines)
		if err := tx.InsertOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, l := range lines {
			if err := tx.DecrementStock(ctx, l.ProductID, l.Quantity); err != nil {
				if errors.Is(err, ErrInsufficientStock) {
					return apperr.Wrap(apperr.KindValidation, fmt.Sprintf("Insufficient stock for %s.", l.ProductName), err)
				}
				return fmt.Errorf("decrement stock for product %d: %w", l.ProductID, err)
			}
		}

		if err := tx.ClearCart(ctx, customer.UserID); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		if s.recorder != nil {
			s.recorder.CheckoutFailed(ctx, apperr.KindOf(err).String())
		}
		return nil, err
	}

	s.logger.Info("order placed", "order_id", order.ID, "user_id", order.UserID, "total", order.TotalAmount.String())
	if s.recorder != nil {
		s.recorder.OrderPlaced(ctx, order.TotalAmount, len(order.Items))
	}
	s.publishPlaced(ctx, customer, order)

	return order, nil
}

func newOrder(userID int64, at time.Time, lines []domain.CartLine) *domain.Order {
	order := &domain.Order{
		UserID:      userID,
		OrderDate:   at,
		TotalAmount: decimal.Zero,
		Status:      domain.OrderStatusCompleted,
		Items:       make([]domain.OrderLine, 0, len(lines)),
	}

	for _, l := range lines {
		productID := l.ProductID
		order.Items = append(order.Items, domain.OrderLine{
			ProductID:   &productID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
		order.TotalAmount = order.TotalAmount.Add(l.Total())
	}

	return order
}

// publishPlaced is best effort: the order is already committed.
func (s *Service) publishPlaced(ctx context.Context, customer auth.Principal, order *domain.Order) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderPlacedEvent{
		EventID:   uuid.NewString(),
		OrderID:   order.ID,
		UserID:    order.UserID,
		Email:     customer.Email,
		Name:      customer.Name,
		Items:     make([]domain.OrderPlacedItem, 0, len(order.Items)),
		Total:     order.TotalAmount,
		Timestamp: order.OrderDate,
	}
	for _, line := range order.Items {
		event.Items = append(event.Items, domain.OrderPlacedItem(line))
	}

	if err := s.publisher.Publish(ctx, strconv.FormatInt(order.ID, 10), event); err != nil {
		s.logger.Error("failed to publish order placed event", "error", err, "order_id", order.ID)
	}
}
