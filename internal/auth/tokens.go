package auth

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/google/uuid"

	"github.com/njohnson2897/bookmarkd-sub000/internal/domain"
	"github.com/njohnson2897/bookmarkd-sub000/internal/viewer"
)

const (
	tokenIssuer   = "bookmarkd"
	tokenAudience = "bookmarkd-client"

	// DefaultTokenDuration is the validity window of an access token.
	DefaultTokenDuration = 4 * time.Hour
)

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	symmetricKey paseto.V4SymmetricKey
	duration     time.Duration
	now          func() time.Time
}

// NewTokenService creates a token service from a hex-encoded 32 byte key.
func NewTokenService(keyHex string, duration time.Duration) (*TokenService, error) {
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d hex characters (%d bytes), got %d", keyHexLength, keyLength, len(keyHex))
	}

	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid hex string for PASETO key: %w", err)
	}

	key, err := paseto.V4SymmetricKeyFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	if duration <= 0 {
		duration = DefaultTokenDuration
	}

	return &TokenService{
		symmetricKey: key,
		duration:     duration,
		now:          time.Now,
	}, nil
}

// Issue creates an encrypted access token for user, valid for the configured window.
func (s *TokenService) Issue(user *domain.User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("issue token: user is required")
	}

	now := s.now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.duration))
	token.SetJti(uuid.NewString())

	//nolint:errcheck // Token.Set only errors on values that cannot be marshaled
	_ = token.Set("user_id", user.ID)
	//nolint:errcheck // see above
	_ = token.Set("username", user.Username)
	//nolint:errcheck // see above
	_ = token.Set("email", user.Email)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify decrypts and validates a token and returns its claims.
func (s *TokenService) Verify(tokenString string) (*ViewerClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims ViewerClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.UserID == "" {
		return nil, errors.New("invalid token: missing user_id")
	}

	return &claims, nil
}

// Viewer resolves a credential into a viewer identity. Any verification
// failure is returned as an error; request-path callers treat it as anonymous.
func (s *TokenService) Viewer(tokenString string) (viewer.Viewer, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return viewer.Viewer{}, err
	}
	return viewer.Viewer{
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}, nil
}

// Duration returns the configured token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
