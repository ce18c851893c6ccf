package service

//go:generate mockgen -destination=../../mocks/mock_user_store.go -package=mocks github.com/crystalafinch/authentication/internal/auth/domain UserStore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crystalafinch/authentication/internal/auth/domain"
	"github.com/crystalafinch/authentication/internal/auth/dto"
	apperrors "github.com/crystalafinch/authentication/internal/errors"
	"github.com/crystalafinch/authentication/internal/logging"
	"github.com/crystalafinch/authentication/internal/report"
)

const (
	contextCreateAccount = "create_account_attempt"
	contextSignIn        = "signin_attempt"
)

type UserService struct {
	store    domain.UserStore
	tokens   TokenGenerator
	reporter report.Reporter
	log      logging.Logger
	validate *validator.Validate
}

func NewUserService(store domain.UserStore, tokens TokenGenerator, reporter report.Reporter, log logging.Logger) *UserService {
	return &UserService{
		store:    store,
		tokens:   tokens,
		reporter: reporter,
		log:      log,
		validate: validator.New(),
	}
}

// CreateAccount registers a new user and issues its first token pair. The
// password is hashed with bcrypt's default cost before it is stored.
func (s *UserService) CreateAccount(ctx context.Context, input dto.CredentialsInput) (*domain.User, domain.TokenPair, error) {
	email := normalizeEmail(input.Email)

	if err := s.validate.Var(email, "required,email"); err != nil {
		s.capture(ctx, apperrors.ErrInvalidEmail, contextCreateAccount, email)
		return nil, domain.TokenPair{}, apperrors.ErrInvalidEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	now := time.Now()
	user := &domain.User{
		ID:                  uuid.NewString(),
		Email:               email,
		PasswordHash:        string(hash),
		RefreshTokenVersion: 1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyInUse) {
			s.capture(ctx, err, contextCreateAccount, email)
		}
		return nil, domain.TokenPair{}, err
	}

	pair, err := s.tokens.Issue(user.ID, user.RefreshTokenVersion)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	s.log.Info(ctx, "account created", "user_id", user.ID)

	return user, pair, nil
}

func (s *UserService) SignIn(ctx context.Context, input dto.CredentialsInput) (*domain.User, domain.TokenPair, error) {
	email := normalizeEmail(input.Email)

	if err := s.validate.Var(email, "required,email"); err != nil {
		s.capture(ctx, apperrors.ErrInvalidEmail, contextSignIn, email)
		return nil, domain.TokenPair{}, apperrors.ErrInvalidEmail
	}

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	if user == nil {
		s.capture(ctx, apperrors.ErrNoSuchUser, contextSignIn, email)
		return nil, domain.TokenPair{}, apperrors.ErrNoSuchUser
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.capture(ctx, apperrors.ErrInvalidCredentials, contextSignIn, email)
		return nil, domain.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID, user.RefreshTokenVersion)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	return user, pair, nil
}

// Resolve turns the two session cookies into a user. A valid access token
// wins and costs no cookie writes; otherwise a valid, version-matching
// refresh token re-issues both tokens (rotation on every refresh use) and the
// returned pair is non-nil so the caller can re-attach cookies. Any other
// outcome is "no session", reported through the error.
func (s *UserService) Resolve(ctx context.Context, accessToken, refreshToken string) (*domain.User, *domain.TokenPair, error) {
	if accessToken != "" {
		if claims, err := s.tokens.VerifyAccess(accessToken); err == nil {
			user, err := s.store.GetByID(ctx, claims.UserID)
			if err != nil {
				return nil, nil, err
			}
			if user != nil {
				return user, nil, nil
			}
			// The token outlived the account; fall through to refresh, which
			// fails the same lookup and degrades to no session.
		}
	}

	if refreshToken == "" {
		return nil, nil, apperrors.ErrTokenInvalid
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.store.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, apperrors.ErrTokenInvalid
	}

	if claims.RefreshTokenVersion != user.RefreshTokenVersion {
		return nil, nil, apperrors.ErrRefreshVersionMismatch
	}

	pair, err := s.tokens.Issue(user.ID, user.RefreshTokenVersion)
	if err != nil {
		return nil, nil, err
	}

	return user, &pair, nil
}

// ForceSignOut bumps the user's refresh token version, invalidating every
// outstanding refresh token for that user at once.
func (s *UserService) ForceSignOut(ctx context.Context, userID string) (int, error) {
	version, err := s.store.BumpRefreshTokenVersion(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.log.Info(ctx, "forced sign-out", "user_id", userID, "refresh_token_version", version)

	return version, nil
}

// capture reports a failure with redacted context: email only, never the
// password. Reporting is a side effect and must not block or fail the call.
func (s *UserService) capture(ctx context.Context, err error, contextName, email string) {
	s.reporter.CaptureException(ctx, err, contextName, map[string]any{"email": email})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
