// Package seed provisions the administrator account and the default catalog
// categories. Every step is idempotent.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/domain"
)

var DefaultCategories = []domain.Category{
	{Name: "Headphones", Description: "Over-ear, on-ear and in-ear headphones"},
	{Name: "Speakers", Description: "Portable and home speakers"},
	{Name: "Smart Phones", Description: "Phones and accessories"},
	{Name: "Computers", Description: "Laptops and desktops"},
}

type Admin struct {
	Name     string
	Email    string
	Password string
}

func (a Admin) validate() error {
	switch {
	case strings.TrimSpace(a.Email) == "":
		return errors.New("ADMIN_EMAIL is required")
	case a.Password == "":
		return errors.New("ADMIN_PASSWORD is required")
	}
	return nil
}

type Store interface {
	// EnsureUser inserts the user unless the email is taken and reports
	// whether a row was written.
	EnsureUser(ctx context.Context, user *domain.User) (bool, error)
	EnsureCategory(ctx context.Context, category domain.Category) (bool, error)
}

type Seeder struct {
	store  Store
	logger *slog.Logger
}

func NewSeeder(store Store, logger *slog.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

func (s *Seeder) Run(ctx context.Context, admin Admin) error {
	if err := admin.validate(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Administrator"
	}

	created, err := s.store.EnsureUser(ctx, &domain.User{
		Name:         name,
		Email:        strings.TrimSpace(admin.Email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	s.logger.Info("admin seeded", slog.String("email", admin.Email), slog.Bool("created", created))

	for _, c := range DefaultCategories {
		created, err := s.store.EnsureCategory(ctx, c)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		s.logger.Info("category seeded", slog.String("name", c.Name), slog.Bool("created", created))
	}

	return nil
}

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) EnsureUser(ctx context.Context, user *domain.User) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(email))) DO NOTHING
	`, user.Name, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func (s *SQLStore) EnsureCategory(ctx context.Context, category domain.Category) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, description)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM categories WHERE lower(name) = lower($1))
	`, category.Name, category.Description)
	if err != nil {
		return false, err
	}
	return affected(result)
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
