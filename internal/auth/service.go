package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amadeea/book-notes/internal/apperr"
	"github.com/Amadeea/book-notes/internal/models"
	"github.com/Amadeea/book-notes/internal/store"
)

// Service verifies and creates credentials. Expected failures come back as
// apperr sentinels; anything else is a store or hashing fault.
type Service struct {
	store *store.Store
	cost  int
}

// NewService creates an auth service hashing at the given bcrypt cost.
func NewService(st *store.Store, cost int) *Service {
	return &Service{store: st, cost: cost}
}

// Login looks the user up by username and verifies the password.
// Unknown username yields apperr.ErrUserNotFound, a mismatch yields
// apperr.ErrIncorrectPassword.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: login lookup: %w", err)
	}
	if !CheckPassword(password, user.PasswordHash) {
		return nil, apperr.ErrIncorrectPassword
	}
	return user, nil
}

// Register hashes the password and creates the user. A duplicate username
// yields apperr.ErrUserExists without touching the existing record.
func (s *Service) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, apperr.ErrUserExists) {
			return nil, apperr.ErrUserExists
		}
		return nil, fmt.Errorf("auth: register: %w", err)
	}
	return user, nil
}
