package service

import (
	"context"
	"testing"

	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/model"
	"github.com/Vanjivaka-Sairam/url-shortener/internal/app/repository"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	createFn      func(ctx context.Context, user *model.User) error
	findByEmailFn func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, repository.ErrUserNotFound
}

func TestEnsureDefaultUser_CreatesWhenMissing(t *testing.T) {
	var created *model.User
	users := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	EnsureDefaultUser(context.Background(), users, nil)

	if created == nil {
		t.Fatal("expected the default user to be created")
	}
	if created.Email != defaultUserEmail {
		t.Fatalf("unexpected email %q", created.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(defaultUserPassword)) != nil {
		t.Fatal("stored hash does not match the default password")
	}
}

func TestEnsureDefaultUser_Idempotent(t *testing.T) {
	users := &mockUserRepository{
		findByEmailFn: func(ctx context.Context, email string) (*model.User, error) {
			return &model.User{ID: 1, Email: email}, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			t.Fatal("existing default user must not be recreated")
			return nil
		},
	}

	EnsureDefaultUser(context.Background(), users, nil)
}

func TestEnsureDefaultUser_LosingTheBootRaceIsFine(t *testing.T) {
	users := &mockUserRepository{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrEmailTaken
		},
	}

	// Must not panic or error out: a concurrent boot already won.
	EnsureDefaultUser(context.Background(), users, nil)
}
