//go:build cgo

package main

import "github.com/dusk-indust/labelgraph/internal/graph"

func openKuzu(dsn string) (graph.Store, error) {
	if dsn == "" || dsn == ":memory:" {
		return graph.NewKuzuStore()
	}
	return graph.NewKuzuFileStore(dsn)
}
