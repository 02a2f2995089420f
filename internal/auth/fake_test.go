package auth

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joao-fontenele/storefront/internal/domain"
)

type fakeUserStore struct {
	mu     sync.Mutex
	users  []domain.User
	nextID int64
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *fakeUserStore, *TokenIssuer) {
	store := &fakeUserStore{}
	tokens := NewTokenIssuer("test-secret", time.Hour)
	return NewService(store, tokens, discardLogger()), store, tokens
}
