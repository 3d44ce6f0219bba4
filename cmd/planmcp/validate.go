package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emergent-company/planmcp/internal/engine"
	"github.com/emergent-company/planmcp/internal/plan"
	"github.com/emergent-company/planmcp/internal/store"
)

func newValidateCmd(configPath *string) *cobra.Command {
	var libraryFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every container and print the report",
		Long: `Validate every container in the store (or in a library file passed with
--library) and print the per-container report as JSON. Exits non-zero when
any container is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			eng := app.engine
			if libraryFile != "" {
				// Validate the document in isolation, not the configured store.
				eng = engine.New(store.NewMemory(), engine.WithLogger(app.logger))
				f, err := os.Open(libraryFile)
				if err != nil {
					return fmt.Errorf("opening %s: %w", libraryFile, err)
				}
				defer f.Close()
				lib, err := plan.DecodeLibrary(f)
				if err != nil {
					return err
				}
				if _, diags, err := eng.Import(lib); err != nil {
					return err
				} else if !diags.OK() {
					b, _ := json.MarshalIndent(diags, "", "  ")
					fmt.Fprintln(os.Stderr, string(b))
					return fmt.Errorf("library rejected with %d diagnostics", len(diags))
				}
			}

			report := eng.ValidateAll()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}

			if report.InvalidContainers > 0 {
				return fmt.Errorf("%d of %d containers invalid", report.InvalidContainers, report.TotalContainers)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&libraryFile, "library", "", "validate a library document instead of the configured store")
	return cmd
}
