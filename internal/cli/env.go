package cli

import (
	"fmt"

	"github.com/existflow/pmdesk/internal/api"
	"github.com/existflow/pmdesk/internal/config"
	"github.com/existflow/pmdesk/internal/db"
	"github.com/existflow/pmdesk/internal/session"
)

// loadedConfig is resolved once in the root PersistentPreRunE
var loadedConfig *config.Config

// env bundles the pieces every command needs: the API client, the local
// store, and the session restored from it.
type env struct {
	Config *config.Config
	Client *api.Client
	DB     *db.DB
	Store  *session.Store
}

// openEnv opens the local database and restores any persisted session
func openEnv() (*env, error) {
	cfg := loadedConfig
	if cfg == nil {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}

	database, err := db.OpenDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	client := api.New(cfg.ServerURL)
	store := session.New(client, database)
	store.Restore()

	return &env{Config: cfg, Client: client, DB: database, Store: store}, nil
}

// requireSession is openEnv plus a login check
func requireSession() (*env, error) {
	e, err := openEnv()
	if err != nil {
		return nil, err
	}
	if !e.Store.Authenticated() {
		e.Close()
		return nil, fmt.Errorf("not logged in, run 'pmdesk auth login' first")
	}
	return e, nil
}

func (e *env) Close() {
	_ = e.DB.Close()
}
