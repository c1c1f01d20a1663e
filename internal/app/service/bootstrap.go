package service

import (
	"context"
	"errors"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultUserEmail    = "intern@dacoid.com"
	defaultUserPassword = "Test123"
)

// EnsureDefaultUser creates the bootstrap account if it does not exist
// yet. It is idempotent and invoked once during process startup; any
// failure is logged and startup continues, since the account is a
// convenience, not a dependency.
func EnsureDefaultUser(ctx context.Context, users repository.UserRepository, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	_, err := users.FindByEmail(ctx, defaultUserEmail)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		logger.Warn("default user lookup failed", zap.Error(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultUserPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Warn("default user password hash failed", zap.Error(err))
		return
	}

	if err := users.Create(ctx, &model.User{
		Email:        defaultUserEmail,
		PasswordHash: string(hash),
	}); err != nil {
		// A concurrent boot may have won the race; that still counts.
		if errors.Is(err, repository.ErrEmailTaken) {
			return
		}
		logger.Warn("default user creation failed", zap.Error(err))
		return
	}

	logger.Info("default user created", zap.String("email", defaultUserEmail))
}
