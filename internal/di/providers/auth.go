package providers

import (
	"github.com/samber/do/v2"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/config"
	"github.com/njohnson2897/bookmarkd-sub000/internal/logger"
)

// AuthKey is the hex-encoded symmetric key used to sign viewer tokens.
type AuthKey string

// ProvideAuthKey loads or generates the authentication key under the data directory.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Data.Path)
	if err != nil {
		return "", err
	}

	log.Info("Authentication key loaded",
		"path", cfg.Data.KeyPath(),
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService(string(key), cfg.Auth.AccessTokenDuration)
}
