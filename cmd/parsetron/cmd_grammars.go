package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kitt-ai/parsetron/grammars"
)

func newGrammarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammars",
		Short:         "Inspect the built-in grammars",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarsListCmd())
	cmd.AddCommand(newGrammarsShowCmd())

	return cmd
}

func newGrammarsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the built-in grammars",
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Name", "Productions", "Terminals"})
			for _, name := range grammars.Names() {
				g, err := grammars.ByName(name)
				if err != nil {
					return err
				}
				table.Append([]string{
					name,
					fmt.Sprintf("%d", g.Len()),
					fmt.Sprintf("%d", len(g.Terminals())),
				})
			}
			table.Render()
			return nil
		},
	}
}

func newGrammarsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "show <name>",
		Short:         "Dump a grammar's productions",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammars.ByName(args[0])
			if err != nil {
				return err
			}
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"LHS", "RHS", "Kind"})
			for _, p := range g.Productions() {
				kind := "nonterminal"
				if p.Terminal {
					kind = "terminal"
				}
				rhs := make([]string, len(p.RHS))
				for i, r := range p.RHS {
					rhs[i] = r.String()
				}
				table.Append([]string{p.LHS.String(), strings.Join(rhs, " "), kind})
			}
			table.Render()
			return nil
		},
	}
}
