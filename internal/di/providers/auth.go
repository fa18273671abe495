package providers

import (
	"encoding/hex"

	"github.com/samber/do/v2"

	"github.com/readkeepapp/readkeep-server/internal/auth"
	"github.com/readkeepapp/readkeep-server/internal/config"
	"github.com/readkeepapp/readkeep-server/internal/logger"
)

// AuthKey is the symmetric token key, loaded from disk or freshly generated.
type AuthKey []byte

// ProvideAuthKey resolves the token key from the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.AccessTokenKey = key

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
		"refresh_token_duration", cfg.Auth.RefreshTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService builds the PASETO token service from the key and
// configured token lifetimes.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(hex.EncodeToString(key), cfg.Auth.AccessTokenDuration, cfg.Auth.RefreshTokenDuration)
}
