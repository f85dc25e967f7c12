package providers

import (
	"github.com/samber/do/v2"

	"github.com/njohnson2897/bookmarkd-sub000/internal/auth"
	"github.com/njohnson2897/bookmarkd-sub000/internal/config"
	"github.com/njohnson2897/bookmarkd-sub000/internal/logger"
	"github.com/njohnson2897/bookmarkd-sub000/internal/metadata/googlebooks"
	"github.com/njohnson2897/bookmarkd-sub000/internal/service"
)

// MetadataClient holds the Google Books client, or nil when back-fill is disabled.
type MetadataClient struct {
	*googlebooks.Client
}

// ProvideMetadataClient provides the Google Books volume client.
func ProvideMetadataClient(i do.Injector) (*MetadataClient, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.GoogleBooks.Backfill {
		log.Info("Book metadata back-fill disabled by configuration")
		return &MetadataClient{}, nil
	}

	client := googlebooks.NewClient(cfg.GoogleBooks.BaseURL, cfg.GoogleBooks.APIKey, log.Logger)
	log.Info("Google Books client initialized", "authenticated", cfg.GoogleBooks.APIKey != "")

	return &MetadataClient{Client: client}, nil
}

// ProvideServices provides every business service over the shared store.
func ProvideServices(i do.Injector) (*service.Services, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	metadata := do.MustInvoke[*MetadataClient](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A typed nil *Client inside the interface would read as "enabled".
	var source service.MetadataSource
	if metadata.Client != nil {
		source = metadata.Client
	}

	return service.NewServices(storeHandle.Store, tokens, source, log.Logger), nil
}
