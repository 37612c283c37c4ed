//go:build !cgo

package main

import (
	"errors"

	"github.com/dusk-indust/labelgraph/internal/graph"
)

func openKuzu(string) (graph.Store, error) {
	return nil, errors.New("kuzu driver requires a cgo build")
}
