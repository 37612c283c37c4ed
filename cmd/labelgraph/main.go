// Package main provides the labelgraph binary entry point.
// labelgraph maintains a label taxonomy as a directed graph, materializes
// every root-to-node walk as a dotted route and answers path queries
// against SQLite, PostgreSQL, MySQL or Kuzu.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/config"
	"github.com/dusk-indust/labelgraph/internal/graph"
	"github.com/dusk-indust/labelgraph/internal/metrics"
)

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cliFlags are the persistent flags shared by every subcommand.
type cliFlags struct {
	ProjectRoot string
	Driver      string
	DSN         string
	Verbose     bool
}

// app carries what a subcommand needs once the store is open.
type app struct {
	flags  cliFlags
	cfg    *config.Config
	logger *slog.Logger
	store  graph.Store
	svc    *graph.Service
	out    io.Writer
	errOut io.Writer
}

// noStore marks commands that run without opening a database.
const noStore = "no-store"

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:           "labelgraph",
		Short:         "Hierarchical label taxonomy with materialized routes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[noStore] == "true" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.flags.ProjectRoot, "project-root", "C", ".", "directory containing labelgraph.yml")
	pf.StringVar(&a.flags.Driver, "driver", "", "storage driver: sqlite, pgsql, mysql, kuzu, memory")
	pf.StringVar(&a.flags.DSN, "dsn", "", "data source name for the driver")
	pf.BoolVarP(&a.flags.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(
		newLabelCmd(a),
		newRelationshipCmd(a),
		newRouteCmd(a),
		newAttachCmd(a),
		newDetachCmd(a),
		newSyncCmd(a),
		newEntitiesCmd(a),
		newExportCmd(a),
		newDiagramCmd(a),
		newStatusCmd(a),
		newPatternCmd(a),
	)
	return cmd
}

// open loads configuration, applies flag overrides and opens the store.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.ProjectRoot)
	if err != nil {
		return err
	}
	if a.flags.Driver != "" {
		cfg.Driver = a.flags.Driver
	}
	if a.flags.DSN != "" {
		cfg.DSN = a.flags.DSN
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(a.errOut, cfg.Log, a.flags.Verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	a.store = store
	a.svc = graph.NewService(store,
		graph.WithLogger(logger),
		graph.WithMetrics(metrics.New(prometheus.NewRegistry())),
		graph.WithMaxDepth(cfg.MaxDepth),
		graph.WithWorkers(cfg.Workers),
	)
	logger.Debug("store opened", "driver", store.Driver())
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func newLogger(w io.Writer, lc config.LogConfig, verbose bool) (*slog.Logger, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
