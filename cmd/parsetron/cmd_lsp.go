package main

import (
	"github.com/spf13/cobra"

	"github.com/kitt-ai/parsetron/grammars"
	"github.com/kitt-ai/parsetron/lsp"
)

const version = "0.1.0"

func newLSPCmd() *cobra.Command {
	var grammarName string

	cmd := &cobra.Command{
		Use:           "lsp",
		Short:         "Start the Language Server Protocol server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammars.ByName(grammarName)
			if err != nil {
				return err
			}
			server := lsp.NewServer(g, version)
			return server.RunStdio()
		},
	}

	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "colored-light", "built-in grammar to serve diagnostics for")

	return cmd
}
