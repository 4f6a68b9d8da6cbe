package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rryowa/foodsafer/internal/storage"
	"github.com/rryowa/foodsafer/internal/util"
)

const tokenIssuer = "foodsafer"

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenRevoked   = errors.New("token revoked")
)

// TokenService issues HS512 access tokens and opaque selector.verifier
// refresh tokens. Revoked access tokens are remembered until they expire.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    storage.TokenStorage
}

func NewTokenService(cfg *util.TokenConfig, revoked storage.TokenStorage) *TokenService {
	return &TokenService{
		secret:     cfg.JwtSecretKey,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		revoked:    revoked,
	}
}

type accessClaims struct {
	jwt.RegisteredClaims
}

func (ts *TokenService) RefreshTTL() time.Duration {
	return ts.refreshTTL
}

// CreateAccessToken returns the signed token and its JTI.
func (ts *TokenService) CreateAccessToken(userID int64, now time.Time) (string, string, error) {
	jti := uuid.NewString()
	claims := &accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(ts.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, jti, nil
}

// VerifyAccessToken checks the revocation list first, then signature and expiry.
func (ts *TokenService) VerifyAccessToken(ctx context.Context, token string) (int64, error) {
	revoked, err := ts.revoked.IsTokenInvalidated(ctx, token)
	if err != nil {
		return 0, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return 0, ErrTokenRevoked
	}

	claims := &accessClaims{}
	_, err = jwt.ParseWithClaims(
		token,
		claims,
		func(*jwt.Token) (interface{}, error) { return ts.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithLeeway(util.JWTLeeWay),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrTokenInvalid, claims.Subject)
	}
	return userID, nil
}

// RevokeAccessToken blacklists token for the rest of its lifetime.
// Already expired tokens are ignored.
func (ts *TokenService) RevokeAccessToken(ctx context.Context, token string) error {
	claims := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return ErrTokenInvalid
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	if err := ts.revoked.InvalidateToken(ctx, token, ttl); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

// CreateRefreshToken returns "selector.verifier"; only the verifier hash is persisted.
func (ts *TokenService) CreateRefreshToken() (token, selector, verifierHash string, err error) {
	raw := make([]byte, util.RawTokenLength)
	if _, err = rand.Read(raw); err != nil {
		return "", "", "", fmt.Errorf("read random bytes: %w", err)
	}

	half := util.RawTokenLength / 2
	selector = base64.RawURLEncoding.EncodeToString(raw[:half])
	verifier := base64.RawURLEncoding.EncodeToString(raw[half:])

	return selector + "." + verifier, selector, hashVerifier(verifier), nil
}

func (ts *TokenService) SplitRefreshToken(token string) (selector, verifier string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != util.TokenPartsExpected || parts[0] == "" || parts[1] == "" {
		return "", "", ErrTokenMalformed
	}
	return parts[0], parts[1], nil
}

func (ts *TokenService) ValidateRefreshToken(verifier, verifierHash string) error {
	stored, err := hex.DecodeString(verifierHash)
	if err != nil {
		return fmt.Errorf("decode stored hash: %w", err)
	}

	sum := sha256.Sum256([]byte(verifier))
	if subtle.ConstantTimeCompare(sum[:], stored) != 1 {
		return ErrTokenInvalid
	}
	return nil
}

func hashVerifier(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return hex.EncodeToString(sum[:])
}
