package cart

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
)

const (
	msgProductNotFound  = "Product not found."
	msgItemNotFound     = "Item not found."
	msgQuantityTooLarge = "Quantity is too large."
)

type Store interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)
	Upsert(ctx context.Context, userID, productID int64, quantity int) error
	DeleteOwned(ctx context.Context, userID, lineID int64) (bool, error)
}

type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

func (s *Service) Mine(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	lines, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	return lines, nil
}

// Add puts quantity units of the product in the user's cart. A zero quantity
// means one unit.
func (s *Service) Add(ctx context.Context, userID, productID int64, quantity int) ([]domain.CartLine, error) {
	if quantity < 0 {
		return nil, apperr.Validation("Quantity must not be negative.")
	}
	if quantity > math.MaxInt32 {
		return nil, apperr.Validation(msgQuantityTooLarge)
	}
	if quantity == 0 {
		quantity = 1
	}

	exists, err := s.store.ProductExists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, apperr.NotFound(msgProductNotFound)
	}

	if err := s.store.Upsert(ctx, userID, productID, quantity); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, apperr.Wrap(apperr.KindNotFound, msgProductNotFound, err)
		}
		if database.IsNumericOutOfRange(err) {
			return nil, apperr.Wrap(apperr.KindValidation, msgQuantityTooLarge, err)
		}
		return nil, fmt.Errorf("upsert cart line: %w", err)
	}

	s.logger.Info("cart line added", "user_id", userID, "product_id", productID, "quantity", quantity)
	return s.Mine(ctx, userID)
}

func (s *Service) Remove(ctx context.Context, userID, lineID int64) error {
	found, err := s.store.DeleteOwned(ctx, userID, lineID)
	if err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	if !found {
		return apperr.NotFound(msgItemNotFound)
	}

	s.logger.Info("cart line removed", "user_id", userID, "line_id", lineID)
	return nil
}
