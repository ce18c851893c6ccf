package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/crystalafinch/authentication/internal/auth/domain"
	"github.com/crystalafinch/authentication/internal/auth/dto"
	"github.com/crystalafinch/authentication/internal/auth/service"
	apperrors "github.com/crystalafinch/authentication/internal/errors"
	"github.com/crystalafinch/authentication/internal/logging"
	"github.com/crystalafinch/authentication/internal/mocks"
	"github.com/crystalafinch/authentication/internal/report"
)

func newTestUserService(store domain.UserStore, tokens service.TokenGenerator) *service.UserService {
	return service.NewUserService(store, tokens, report.Noop{}, logging.NewForEnv("test"))
}

func TestUserService_CreateAccount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockUserStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	s := newTestUserService(mockStore, mockTokens)

	input := dto.CredentialsInput{Email: "test@example.com", Password: "Sup3r$ecret!"}
	pair := domain.TokenPair{AccessToken: "access", RefreshToken: "refresh"}

	var created *domain.User
	mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			created = u
			return nil
		})
	mockTokens.EXPECT().Issue(gomock.Any(), 1).Return(pair, nil)

	user, gotPair, err := s.CreateAccount(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, input.Email, user.Email)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 1, user.RefreshTokenVersion)
	assert.Equal(t, pair, gotPair)

	// The stored hash must verify against the original password and must not
	// be the password itself.
	require.NotNil(t, created)
	assert.NotEqual(t, input.Password, created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(input.Password)))
}

func TestUserService_CreateAccount_NormalizesEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockUserStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	s := newTestUserService(mockStore, mockTokens)

	mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "alice@example.com", u.Email)
			return nil
		})
	mockTokens.EXPECT().Issue(gomock.Any(), 1).Return(domain.TokenPair{}, nil)

	_, _, err := s.CreateAccount(context.Background(), dto.CredentialsInput{
		Email:    "  Alice@Example.COM ",
		Password: "password123",
	})
	require.NoError(t, err)
}

func TestUserService_CreateAccount_InvalidEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockUserStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	s := newTestUserService(mockStore, mockTokens)

	tests := []string{"", "not-an-email", "missing@tld@twice"}
	for _, email := range tests {
		_, _, err := s.CreateAccount(context.Background(), dto.CredentialsInput{
			Email:    email,
			Password: "password123",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidEmail, "email: %q", email)
	}
}

func TestUserService_CreateAccount_EmailAlreadyInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockUserStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	s := newTestUserService(mockStore, mockTokens)

	mockStore.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.ErrEmailAlreadyInUse)

	user, _, err := s.CreateAccount(context.Background(), dto.CredentialsInput{
		Email:    "taken@example.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyInUse)
	assert.Nil(t, user)
}

func TestUserService_SignIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &domain.User{
		ID:                  "user-123",
		Email:               "test@example.com",
		PasswordHash:        string(hash),
		RefreshTokenVersion: 3,
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		pair := domain.TokenPair{AccessToken: "a", RefreshToken: "r"}
		mockStore.EXPECT().GetByEmail(gomock.Any(), stored.Email).Return(stored, nil)
		mockTokens.EXPECT().Issue(stored.ID, stored.RefreshTokenVersion).Return(pair, nil)

		user, gotPair, err := s.SignIn(context.Background(), dto.CredentialsInput{
			Email:    "test@example.com",
			Password: "correct-password",
		})

		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
		assert.Equal(t, pair, gotPair)
	})

	t.Run("no such user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		mockStore.EXPECT().GetByEmail(gomock.Any(), "missing@example.com").Return(nil, nil)

		_, _, err := s.SignIn(context.Background(), dto.CredentialsInput{
			Email:    "missing@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, apperrors.ErrNoSuchUser)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		mockStore.EXPECT().GetByEmail(gomock.Any(), stored.Email).Return(stored, nil)

		_, _, err := s.SignIn(context.Background(), dto.CredentialsInput{
			Email:    "test@example.com",
			Password: "wrong-password",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("store error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		dbErr := errors.New("database error")
		mockStore.EXPECT().GetByEmail(gomock.Any(), stored.Email).Return(nil, dbErr)

		_, _, err := s.SignIn(context.Background(), dto.CredentialsInput{
			Email:    "test@example.com",
			Password: "correct-password",
		})
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestUserService_Resolve(t *testing.T) {
	stored := &domain.User{
		ID:                  "user-123",
		Email:               "test@example.com",
		RefreshTokenVersion: 2,
	}

	accessClaims := &service.AccessClaims{
		UserID:           stored.ID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}
	refreshClaims := &service.RefreshClaims{
		UserID:              stored.ID,
		RefreshTokenVersion: 2,
	}

	t.Run("valid access token, no rotation", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		mockTokens.EXPECT().VerifyAccess("access-token").Return(accessClaims, nil)
		mockStore.EXPECT().GetByID(gomock.Any(), stored.ID).Return(stored, nil)

		user, rotated, err := s.Resolve(context.Background(), "access-token", "refresh-token")

		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
		assert.Nil(t, rotated)
	})

	t.Run("expired access falls through to refresh and rotates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		pair := domain.TokenPair{AccessToken: "new-a", RefreshToken: "new-r"}
		mockTokens.EXPECT().VerifyAccess("stale").Return(nil, apperrors.ErrTokenExpired)
		mockTokens.EXPECT().VerifyRefresh("refresh-token").Return(refreshClaims, nil)
		mockStore.EXPECT().GetByID(gomock.Any(), stored.ID).Return(stored, nil)
		mockTokens.EXPECT().Issue(stored.ID, stored.RefreshTokenVersion).Return(pair, nil)

		user, rotated, err := s.Resolve(context.Background(), "stale", "refresh-token")

		require.NoError(t, err)
		assert.Equal(t, stored.ID, user.ID)
		require.NotNil(t, rotated)
		assert.Equal(t, pair, *rotated)
	})

	t.Run("no cookies at all", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		user, rotated, err := s.Resolve(context.Background(), "", "")

		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		assert.Nil(t, user)
		assert.Nil(t, rotated)
	})

	t.Run("stale refresh version is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		staleClaims := &service.RefreshClaims{UserID: stored.ID, RefreshTokenVersion: 1}
		mockTokens.EXPECT().VerifyAccess("stale").Return(nil, apperrors.ErrTokenExpired)
		mockTokens.EXPECT().VerifyRefresh("old-refresh").Return(staleClaims, nil)
		mockStore.EXPECT().GetByID(gomock.Any(), stored.ID).Return(stored, nil)

		user, rotated, err := s.Resolve(context.Background(), "stale", "old-refresh")

		assert.ErrorIs(t, err, apperrors.ErrRefreshVersionMismatch)
		assert.Nil(t, user)
		assert.Nil(t, rotated)
	})

	t.Run("access token for deleted user degrades to no session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockStore := mocks.NewMockUserStore(ctrl)
		mockTokens := mocks.NewMockTokenGenerator(ctrl)
		s := newTestUserService(mockStore, mockTokens)

		mockTokens.EXPECT().VerifyAccess("access-token").Return(accessClaims, nil)
		mockStore.EXPECT().GetByID(gomock.Any(), stored.ID).Return(nil, nil).Times(2)
		mockTokens.EXPECT().VerifyRefresh("refresh-token").Return(refreshClaims, nil)

		user, _, err := s.Resolve(context.Background(), "access-token", "refresh-token")

		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		assert.Nil(t, user)
	})
}

func TestUserService_ForceSignOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := mocks.NewMockUserStore(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	s := newTestUserService(mockStore, mockTokens)

	mockStore.EXPECT().BumpRefreshTokenVersion(gomock.Any(), "user-123").Return(4, nil)

	version, err := s.ForceSignOut(context.Background(), "user-123")

	require.NoError(t, err)
	assert.Equal(t, 4, version)
}
