package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/emergent-company/planmcp/internal/content"
	"github.com/emergent-company/planmcp/internal/maintenance"
	"github.com/emergent-company/planmcp/internal/mcp"
	"github.com/emergent-company/planmcp/internal/tools/arrange"
	"github.com/emergent-company/planmcp/internal/tools/library"
	"github.com/emergent-company/planmcp/internal/tools/templates"
	"github.com/emergent-company/planmcp/internal/tools/validate"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio or http per config)",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()
			return runServe(app)
		},
	}
}

func runServe(app *app) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server := mcp.NewServer(mcp.ServerInfo{
		Name:    app.cfg.Server.Name,
		Version: app.version(),
	}, app.logger)

	registerTools(server, app)

	if app.cfg.Maintenance.Enabled {
		sweeper := maintenance.NewSweeper(app.engine,
			time.Duration(app.cfg.Maintenance.IntervalMinutes)*time.Minute, app.logger)
		go sweeper.Run(ctx)
	}

	switch app.cfg.Transport.Mode {
	case "http":
		return serveHTTP(ctx, app, server)
	default:
		return server.Run(ctx)
	}
}

func registerTools(server *mcp.Server, app *app) {
	// Template tools
	server.Register(templates.NewCreateAtomic(app.engine))
	server.Register(templates.NewCreateContainer(app.engine))
	server.Register(templates.NewGetTemplate(app.engine))
	server.Register(templates.NewListTemplates(app.engine))
	server.Register(templates.NewSearchIntent(app.engine))
	server.Register(templates.NewGetVocabulary(app.engine))
	server.Register(templates.NewUpdateDuration(app.engine))
	server.Register(templates.NewUpdateIntent(app.engine))
	server.Register(templates.NewUpdateConsume(app.engine))
	server.Register(templates.NewUpdateProduce(app.engine))
	server.Register(templates.NewDeleteTemplate(app.engine))

	// Layout tools
	server.Register(arrange.NewApplyLayout(app.engine))
	server.Register(arrange.NewPack(app.engine))
	server.Register(arrange.NewEquallyDistribute(app.engine))
	server.Register(arrange.NewDistributeByInterval(app.engine))
	server.Register(arrange.NewFitToLast(app.engine))
	server.Register(arrange.NewInsertGap(app.engine))
	server.Register(arrange.NewAddToEnd(app.engine))
	server.Register(arrange.NewPushToStart(app.engine))
	server.Register(arrange.NewInsertAt(app.engine))
	server.Register(arrange.NewDeleteSegment(app.engine))

	// Analysis tools
	server.Register(validate.NewValidate(app.engine))
	server.Register(validate.NewValidateAll(app.engine))

	// Document tools
	server.Register(library.NewExport(app.engine))
	server.Register(library.NewImport(app.engine))

	// Resources
	server.RegisterResource(&content.VocabularyResource{Rules: app.vocabRules})
	server.RegisterResource(&content.ToolReferenceResource{})
}

func serveHTTP(ctx context.Context, app *app, server *mcp.Server) error {
	handler := mcp.NewHTTPServer(server, app.logger).Handler()
	addr := net.JoinHostPort(app.cfg.Transport.Host, app.cfg.Transport.Port)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("planmcp http server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}
