package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/joao-fontenele/storefront/internal/apperr"
	"github.com/joao-fontenele/storefront/internal/database"
	"github.com/joao-fontenele/storefront/internal/domain"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type UserStore interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Service struct {
	users  UserStore
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewService(users UserStore, tokens *TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a Customer account. Clients cannot choose their role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" {
		return 0, apperr.Validation("Name is required.")
	}
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, "<> ") {
		return 0, apperr.Validation("A valid email is required.")
	}
	if len(in.Password) < minPasswordLength {
		return 0, apperr.Validation(fmt.Sprintf("Password must be at least %d characters.", minPasswordLength))
	}
	if len(in.Password) > maxPasswordBytes {
		return 0, apperr.Validation(fmt.Sprintf("Password must be at most %d bytes.", maxPasswordBytes))
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return 0, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil {
		return 0, apperr.Conflict("User already exists.")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return 0, apperr.Wrap(apperr.KindConflict, "User already exists.", err)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user.ID, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", apperr.NotFound("User not found.")
	}

	ok, err := CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return "", apperr.Unauthorized("Wrong password.")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", err
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, nil
}
