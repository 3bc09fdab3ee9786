package service

import (
	"context"
	"testing"
	"time"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/Rrens/chat-to-task/internal/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func newTestJWTManager() *security.JWTManager {
	return security.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	users := new(MockUserRepository)
	users.On("EmailExists", mock.Anything, "alice@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "alice@example.com" && u.PasswordHash != "secret-password"
	})).Return(nil)

	svc := NewAuthService(users, newTestJWTManager())

	user, err := svc.Register(context.Background(), domain.UserCreate{
		Email:    "alice@example.com",
		Password: "secret-password",
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	users.AssertExpectations(t)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	users := new(MockUserRepository)
	users.On("EmailExists", mock.Anything, "alice@example.com").Return(true, nil)

	svc := NewAuthService(users, newTestJWTManager())

	_, err := svc.Register(context.Background(), domain.UserCreate{
		Email:    "alice@example.com",
		Password: "secret-password",
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(&domain.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}, nil)

	svc := NewAuthService(users, newTestJWTManager())

	_, err := svc.Login(context.Background(), domain.UserLogin{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginAndRefresh(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	user := &domain.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}
	users := new(MockUserRepository)
	users.On("GetByEmail", mock.Anything, "alice@example.com").Return(user, nil)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	svc := NewAuthService(users, newTestJWTManager())

	pair, err := svc.Login(context.Background(), domain.UserLogin{
		Email:    "alice@example.com",
		Password: "right-password",
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Greater(t, pair.ExpiresIn, int64(0))

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	assert.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestAuthService_RefreshRejectsGarbage(t *testing.T) {
	svc := NewAuthService(new(MockUserRepository), newTestJWTManager())

	_, err := svc.Refresh(context.Background(), "not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}
