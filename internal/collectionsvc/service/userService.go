package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/cardtrove/collection-services/internal/collectionsvc/apperr"
	"github.com/cardtrove/collection-services/internal/collectionsvc/models"
)

const defaultUsername = "default"

// UserDirectory is the store surface the user service needs.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
}

// UserService owns the default-collection-owner lifecycle. Sessions may name
// another owner, but every collection falls back to the seeded default user.
type UserService struct {
	store UserDirectory
}

func NewUserService(store UserDirectory) *UserService {
	return &UserService{store: store}
}

// GetOrCreateDefault returns the seeded default owner, creating it on first
// startup.
func (s *UserService) GetOrCreateDefault(ctx context.Context) (*models.User, error) {
	user, err := s.store.GetByUsername(ctx, defaultUsername)
	if err != nil {
		return nil, apperr.Internal("default user lookup failed", err)
	}
	if user != nil {
		return user, nil
	}

	log.Info("default user not found, seeding it")
	user, err = s.store.Create(ctx, models.User{
		Username: defaultUsername,
		Email:    "default@example.com",
	})
	if err != nil {
		return nil, apperr.Internal("failed to seed default user", err)
	}
	return user, nil
}
