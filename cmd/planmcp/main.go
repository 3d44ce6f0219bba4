// Command planmcp runs the planmcp server: a hierarchical planning engine
// exposed over the MCP protocol (JSON-RPC 2.0 on stdio, or HTTP).
//
// Optional environment variables:
//
//	PLANMCP_CONFIG       - path to the TOML config file
//	PLANMCP_STORE_PATH   - SQLite database path (default: in-memory store)
//	PLANMCP_LOG_LEVEL    - debug, info, warn, error (default: info)
//	PLANMCP_TRANSPORT    - stdio or http (default: stdio)
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emergent-company/planmcp/internal/config"
	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/store"
	"github.com/emergent-company/planmcp/internal/vocab"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "planmcp: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "planmcp",
		Short:         "Hierarchical planning engine and MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the TOML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newValidateCmd(&configPath))
	root.AddCommand(newExportCmd(&configPath))
	root.AddCommand(newImportCmd(&configPath))
	root.AddCommand(newInfoCmd())
	return root
}

// app bundles everything a subcommand needs.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      store.Store
	engine     *engine.Engine
	vocabRules vocab.Rules
}

// newApp loads configuration, opens the store, and wires the engine.
// Logging goes to stderr; stdout is reserved for the MCP protocol and for
// exported documents.
func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	var st store.Store
	if cfg.Store.Path != "" {
		st, err = store.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
	} else {
		st = store.NewMemory()
	}

	rules, err := cfg.VocabularyRules()
	if err != nil {
		st.Close()
		return nil, err
	}

	eng := engine.New(st,
		engine.WithLogger(logger),
		engine.WithVocabulary(vocab.New(rules)),
	)

	return &app{cfg: cfg, logger: logger, store: st, engine: eng, vocabRules: rules}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("closing store", "error", err)
	}
}

func (a *app) version() string {
	if Version != "dev" {
		return Version
	}
	return a.cfg.Server.Version
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
