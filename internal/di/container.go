// Package di provides dependency injection configuration for the bookmarkd server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/config"
	"github.com/njohnson2897/bookmarkd-sub000/internal/di/providers"
	"github.com/njohnson2897/bookmarkd-sub000/internal/graph"
	"github.com/njohnson2897/bookmarkd-sub000/internal/logger"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth and metadata
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideMetadataClient)

	// Business services
	do.Provide(injector, providers.ProvideServices)

	// Server
	do.Provide(injector, providers.ProvideGraphHandler)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services in dependency order.
// Providers are lazy, so the HTTP server only starts once it is invoked here.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.MetadataClient](injector)
	_ = do.MustInvoke[*service.Services](injector)
	_ = do.MustInvoke[*graph.Handler](injector)

	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
