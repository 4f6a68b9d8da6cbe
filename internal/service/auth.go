package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rryowa/foodsafer/internal/models"
	"github.com/rryowa/foodsafer/internal/storage"
)

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrRefreshTokenNotFoundOrUsed = errors.New("refresh token not found or already used")
)

type AuthService struct {
	tokens   *TokenService
	users    storage.UserRepository
	sessions storage.SessionRepository
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewAuthService(
	tokens *TokenService,
	users storage.UserRepository,
	sessions storage.SessionRepository,
	log *zap.SugaredLogger,
) *AuthService {
	return &AuthService{
		tokens:   tokens,
		users:    users,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string, meta models.UserMetadata) (*models.TokenPair, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, session, err := s.issue(user.ID, meta)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.CreateSession(ctx, *session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.log.Infow("user logged in", "userID", user.ID, "ip", meta.IPAddress)
	return pair, nil
}

// Refresh rotates the refresh token: the presented one is spent, a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta models.UserMetadata) (*models.TokenPair, error) {
	selector, verifier, err := s.tokens.SplitRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	session, err := s.sessions.GetActiveSessionBySelector(ctx, selector)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrRefreshTokenNotFoundOrUsed
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := s.tokens.ValidateRefreshToken(verifier, session.VerifierHash); err != nil {
		return nil, ErrTokenInvalid
	}

	pair, next, err := s.issue(session.UserID, meta)
	if err != nil {
		return nil, err
	}

	rotated, err := s.sessions.RotateSession(ctx, selector, *next)
	if err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if !rotated {
		return nil, ErrRefreshTokenNotFoundOrUsed
	}

	s.log.Debugw("tokens refreshed", "userID", session.UserID)
	return pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID int64, accessToken string) error {
	if err := s.tokens.RevokeAccessToken(ctx, accessToken); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	if err := s.sessions.DeleteAllUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	s.log.Infow("user logged out", "userID", userID)
	return nil
}

func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (int64, error) {
	return s.tokens.VerifyAccessToken(ctx, accessToken)
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.Profile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &models.Profile{ID: user.ID, Email: user.Email}, nil
}

func (s *AuthService) issue(userID int64, meta models.UserMetadata) (*models.TokenPair, *models.RefreshSession, error) {
	now := s.now()

	accessToken, jti, err := s.tokens.CreateAccessToken(userID, now)
	if err != nil {
		return nil, nil, fmt.Errorf("create access token: %w", err)
	}

	refreshToken, selector, verifierHash, err := s.tokens.CreateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("create refresh token: %w", err)
	}

	session := &models.RefreshSession{
		UserID:         userID,
		Selector:       selector,
		VerifierHash:   verifierHash,
		UserAgent:      meta.UserAgent,
		IPAddress:      meta.IPAddress,
		AccessTokenJTI: jti,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.tokens.RefreshTTL()),
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, session, nil
}
