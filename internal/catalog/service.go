package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/media"
)

const (
	msgCategoryNotFound   = "Category not found."
	msgProductNotFound    = "Product not found."
	msgUnresolvedCategory = "Category not found. Please provide a valid CategoryId or CategoryName."
	msgStockTooLarge      = "Stock is too large."
)

// priceScale matches the NUMERIC(18,2) price column.
const priceScale = 2

type Store interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	FindCategoryByName(ctx context.Context, name string) (*domain.Category, error)
	CreateCategory(ctx context.Context, c *domain.Category) error
	UpdateCategory(ctx context.Context, c *domain.Category) (bool, error)
	DeleteCategory(ctx context.Context, id int64) (bool, error)

	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	AddStock(ctx context.Context, productID int64, quantity int) (bool, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)
}

type ImageStore interface {
	Save(ctx context.Context, filename string, src io.Reader) (string, error)
	Remove(publicPath string) error
}

type Service struct {
	store  Store
	images ImageStore
	logger *slog.Logger
}

func NewService(store Store, images ImageStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		images: images,
		logger: logger,
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound(msgCategoryNotFound)
	}
	return c, nil
}

type CategoryInput struct {
	Name        string
	Description string
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperr.Validation("Name is required.")
	}
	return nil
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &domain.Category{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Info("category created", "category_id", c.ID)
	return c, nil
}

// UpdateCategory overwrites every mutable field of the category.
func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*domain.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &domain.Category{ID: id, Name: strings.TrimSpace(in.Name), Description: in.Description}
	found, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	if !found {
		return nil, apperr.NotFound(msgCategoryNotFound)
	}

	s.logger.Info("category updated", "category_id", id)
	return c, nil
}

// DeleteCategory refuses to orphan products that still reference the category.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	found, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperr.Wrap(apperr.KindConflict, "Category still has products.", err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if !found {
		return apperr.NotFound(msgCategoryNotFound)
	}

	s.logger.Info("category deleted", "category_id", id)
	return nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound(msgProductNotFound)
	}
	return p, nil
}

type Upload struct {
	Filename string
	Content  io.Reader
}

type ProductInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	CategoryID   int64
	CategoryName string
	Image        *Upload
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, apperr.Validation("Name is required.")
	case in.Price.IsNegative():
		return nil, apperr.Validation("Price must not be negative.")
	case !in.Price.Equal(in.Price.Round(priceScale)):
		return nil, apperr.Validation("Price must have at most 2 decimal places.")
	case in.Stock < 0:
		return nil, apperr.Validation("Stock must not be negative.")
	case in.Stock > math.MaxInt32:
		return nil, apperr.Validation(msgStockTooLarge)
	}

	category, err := s.resolveCategory(ctx, in.CategoryID, in.CategoryName)
	if err != nil {
		return nil, err
	}

	imageURL := media.PlaceholderURL
	if in.Image != nil {
		imageURL, err = s.images.Save(ctx, in.Image.Filename, in.Image.Content)
		if err != nil {
			return nil, err
		}
	}

	p := &domain.Product{
		Name:         name,
		Description:  in.Description,
		Price:        in.Price,
		Stock:        in.Stock,
		ImageURL:     imageURL,
		CategoryID:   category.ID,
		CategoryName: category.Name,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		if in.Image != nil {
			if rmErr := s.images.Remove(imageURL); rmErr != nil {
				s.logger.Error("failed to remove orphaned image", "error", rmErr, "image_url", imageURL)
			}
		}
		if database.IsForeignKeyViolation(err) {
			return nil, apperr.Wrap(apperr.KindValidation, msgUnresolvedCategory, err)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created", "product_id", p.ID, "category_id", p.CategoryID)
	return p, nil
}

// resolveCategory tries the id first and falls back to a case-insensitive
// name lookup.
func (s *Service) resolveCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	if id > 0 {
		c, err := s.store.GetCategory(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get category: %w", err)
		}
		if c != nil {
			return c, nil
		}
	}

	if name = strings.TrimSpace(name); name != "" {
		c, err := s.store.FindCategoryByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("find category: %w", err)
		}
		if c != nil {
			return c, nil
		}
	}

	return nil, apperr.Validation(msgUnresolvedCategory)
}

func (s *Service) AddStock(ctx context.Context, productID int64, quantity int) (*domain.Product, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("QuantityToAdd must be greater than zero.")
	}
	if quantity > math.MaxInt32 {
		return nil, apperr.Validation(msgStockTooLarge)
	}

	found, err := s.store.AddStock(ctx, productID, quantity)
	if err != nil {
		if database.IsNumericOutOfRange(err) {
			return nil, apperr.Wrap(apperr.KindValidation, msgStockTooLarge, err)
		}
		return nil, fmt.Errorf("add stock: %w", err)
	}
	if !found {
		return nil, apperr.NotFound(msgProductNotFound)
	}

	s.logger.Info("stock added", "product_id", productID, "quantity", quantity)
	return s.GetProduct(ctx, productID)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	found, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if !found {
		return apperr.NotFound(msgProductNotFound)
	}

	s.logger.Info("product deleted", "product_id", id)
	return nil
}
