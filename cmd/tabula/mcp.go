package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tabula/internal/cli"
	"github.com/aretw0/tabula/pkg/adapters/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server on stdio",
		Long: `Starts Tabula as an MCP server so agents can list schemas, validate
records and fetch reports as tools. Logs go to stderr; stdout carries JSON-RPC.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := cli.NewRuntime(a.cfg, a.logger, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			// Keep stray log output off the JSON-RPC stream.
			log.SetOutput(os.Stderr)
			a.logger.Info("starting MCP server (stdio)")
			return mcp.NewServer(rt.Engine, a.logger).ServeStdio()
		},
	}
}
