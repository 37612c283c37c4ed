package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/labelgraph/internal/config"
	"github.com/dusk-indust/labelgraph/internal/graph"
)

// openStore opens and initializes the backend named by cfg.Driver.
func openStore(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	var (
		store graph.Store
		err   error
	)
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		store = graph.NewMemStore()
	case "kuzu":
		store, err = openKuzu(cfg.DSN)
	default:
		store, err = graph.OpenSQLStore(cfg.Driver, cfg.DSN, cfg.Tables)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
