package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json/v2"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/readkeepapp/readkeep-server/internal/domain"
	"github.com/readkeepapp/readkeep-server/internal/id"
)

const (
	tokenIssuer   = "readkeep-server"
	tokenAudience = "readkeep-client"

	refreshTokenEntropy = 32 // bytes of randomness per refresh token
)

// TokenService issues and verifies access tokens (PASETO v4.local) and
// opaque refresh tokens.
type TokenService struct {
	key        paseto.V4SymmetricKey
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService builds a token service from a hex-encoded 256-bit key.
func NewTokenService(keyHex string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	raw, err := decodeKeyHex(keyHex)
	if err != nil {
		return nil, err
	}

	key, err := paseto.V4SymmetricKeyFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{key: key, accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// GenerateAccessToken issues an encrypted access token for the user. Claims
// are sealed inside the v4.local payload, so clients cannot read or forge
// them without the server key.
func (s *TokenService) GenerateAccessToken(user *domain.User) (string, error) {
	jti, err := id.Generate("token")
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := time.Now()
	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(user.ID)
	token.SetJti(jti)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(now.Add(s.accessTTL))

	// Set only fails for unserializable values, and these are all scalars.
	_ = token.Set("user_id", user.ID)
	_ = token.Set("email", user.Email)
	_ = token.Set("is_root", user.IsRoot)

	return token.V4Encrypt(s.key, nil), nil
}

// VerifyAccessToken decrypts and validates an access token, returning its
// claims. Expired, not-yet-valid, and foreign-audience tokens all fail.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims := &AccessClaims{}
	if err := json.Unmarshal(token.ClaimsJSON(), claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	return claims, nil
}

// GenerateRefreshToken returns a base64url-encoded random refresh token.
// Refresh tokens are opaque, not PASETO: they are validated against a
// stored hash, never parsed.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenEntropy)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// HashRefreshToken derives the storage form of a refresh token. Only the
// hash hits the database, so a database leak does not leak usable tokens.
func HashRefreshToken(token string) string {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return hex.EncodeToString([]byte(token))
	}
	return hex.EncodeToString(decoded)
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration { return s.accessTTL }

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration { return s.refreshTTL }
