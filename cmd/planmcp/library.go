package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/emergent-company/planmcp/internal/plan"
)

func newExportCmd(configPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the template collection as a library document",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			lib := app.engine.Export()
			if output == "" || output == "-" {
				return lib.Encode(os.Stdout)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			if err := lib.Encode(f); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "exported %d templates to %s\n", len(lib.Templates), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <library.json>",
		Short: "Import a library document into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			lib, err := plan.DecodeLibrary(f)
			if err != nil {
				return err
			}

			count, diags, err := app.engine.Import(lib)
			if err != nil {
				return err
			}
			if !diags.OK() {
				b, _ := json.MarshalIndent(diags, "", "  ")
				fmt.Fprintln(os.Stderr, string(b))
				return fmt.Errorf("import rejected with %d diagnostics", len(diags))
			}
			fmt.Fprintf(os.Stderr, "imported %d templates\n", count)
			return nil
		},
	}
}
