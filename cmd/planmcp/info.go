package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	var client string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print server and client configuration information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if client != "" {
				return printClientConfig(client)
			}
			printGeneralInfo()
			return nil
		},
	}
	cmd.Flags().StringVar(&client, "client", "", "show configuration for an MCP client (claude, cursor)")
	return cmd
}

func printGeneralInfo() {
	fmt.Fprintf(os.Stdout, `planmcp %s — Hierarchical planning MCP server

planmcp models executable processes as a typed tree of templates: atomic
steps that consume and produce named quantities of variables, and containers
that arrange children along a relative time axis. A container flattens into
an absolute-time schedule whose ledger simulation yields its input/output
contract.

TRANSPORT MODES

  stdio (default)
    Communicates over stdin/stdout using JSON-RPC 2.0. Used when launched
    as a subprocess by an MCP client.

  http
    Runs as a standalone HTTP server.

    Endpoint:      POST /mcp
    Health check:  GET /health
    Default port:  21453

TOOLS (25)

  Templates (11): plan_create_atomic, plan_create_container,
                  plan_get_template, plan_list_templates, plan_search_intent,
                  plan_get_vocabulary, plan_update_duration,
                  plan_update_intent, plan_update_consume,
                  plan_update_produce, plan_delete_template
  Layout (10):    plan_layout, plan_pack, plan_equally_distribute,
                  plan_distribute_by_interval, plan_fit_to_last,
                  plan_insert_gap, plan_add_to_end, plan_push_to_start,
                  plan_insert_at, plan_delete_segment
  Analysis (2):   plan_validate, plan_validate_all
  Documents (2):  plan_export, plan_import

RESOURCES (2)

  planmcp://vocabulary      Variable naming word lists
  planmcp://tool-reference  Tool usage quick reference

STORAGE

  Templates live in a SQLite database when store.path (or
  PLANMCP_STORE_PATH) is set, otherwise in memory for the process lifetime.

CLIENT CONFIGURATION

  planmcp info --client claude    Claude Desktop (claude_desktop_config.json)
  planmcp info --client cursor    Cursor (.cursor/mcp.json)
`, Version)
}

func printClientConfig(client string) error {
	var file string
	switch client {
	case "claude":
		file = "claude_desktop_config.json"
	case "cursor":
		file = ".cursor/mcp.json"
	default:
		return fmt.Errorf("unknown client %q (supported: claude, cursor)", client)
	}

	fmt.Fprintf(os.Stdout, `Add to %s:

{
  "mcpServers": {
    "planmcp": {
      "command": "planmcp",
      "args": ["serve"],
      "env": {
        "PLANMCP_STORE_PATH": "/path/to/templates.db"
      }
    }
  }
}

planmcp runs as a subprocess over stdio — no server needed.
`, file)
	return nil
}
