package providers

import (
	"io"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/config"
	"github.com/njohnson2897/bookmarkd-sub000/internal/graph"
	"github.com/njohnson2897/bookmarkd-sub000/internal/logger"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
)

func testInjector(t *testing.T, mutate func(*config.Config)) *do.RootScope {
	t.Helper()

	cfg := &config.Config{
		App:    config.AppConfig{Environment: "test"},
		Logger: config.LoggerConfig{Level: "error"},
		Data:   config.DataConfig{Path: t.TempDir()},
		Auth:   config.AuthConfig{AccessTokenDuration: time.Hour},
	}
	if mutate != nil {
		mutate(cfg)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, logger.New(logger.Config{Writer: io.Discard, Environment: "test"}))
	do.Provide(injector, ProvideAuthKey)
	do.Provide(injector, ProvideStore)
	do.Provide(injector, ProvideTokenService)
	do.Provide(injector, ProvideMetadataClient)
	do.Provide(injector, ProvideServices)
	do.Provide(injector, ProvideGraphHandler)

	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func TestProvideServices_BackfillDisabled(t *testing.T) {
	injector := testInjector(t, nil)

	services, err := do.Invoke[*service.Services](injector)
	require.NoError(t, err)
	assert.False(t, services.Book.HasMetadata())
}

func TestProvideServices_BackfillEnabled(t *testing.T) {
	injector := testInjector(t, func(cfg *config.Config) {
		cfg.GoogleBooks.Backfill = true
		cfg.GoogleBooks.BaseURL = "http://127.0.0.1:0"
	})

	services, err := do.Invoke[*service.Services](injector)
	require.NoError(t, err)
	assert.True(t, services.Book.HasMetadata())
}

func TestProvideAuthKey_Reused(t *testing.T) {
	dir := t.TempDir()
	set := func(cfg *config.Config) { cfg.Data.Path = dir }

	first, err := do.Invoke[AuthKey](testInjector(t, set))
	require.NoError(t, err)
	second, err := do.Invoke[AuthKey](testInjector(t, set))
	require.NoError(t, err)

	assert.Len(t, string(first), 64)
	assert.Equal(t, first, second)

	_, err = do.Invoke[*auth.TokenService](testInjector(t, set))
	require.NoError(t, err)
}

func TestProvideGraphHandler(t *testing.T) {
	injector := testInjector(t, nil)

	handler, err := do.Invoke[*graph.Handler](injector)
	require.NoError(t, err)
	assert.NotNil(t, handler)
}
