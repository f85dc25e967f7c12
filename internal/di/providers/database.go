package providers

import (
	"github.com/samber/do/v2"

	"github.com/njohnson2897/bookmarkd-sub000/internal/config"
	"github.com/njohnson2897/bookmarkd-sub000/internal/logger"
	"github.com/njohnson2897/bookmarkd-sub000/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := store.New(cfg.Data.DBPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Data.DBPath())

	return &StoreHandle{Store: db}, nil
}
