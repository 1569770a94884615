package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kitt-ai/parsetron/grammars"
	"github.com/kitt-ai/parsetron/parse"
)

func newParseCmd() *cobra.Command {
	var (
		grammarName  string
		strategyName string
		skipLimit    int
		stepBudget   int
		topK         int
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:           "parse <utterance>...",
		Short:         "Parse an utterance with a built-in grammar",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := buildParser(grammarName, strategyName, skipLimit, stepBudget)
			if err != nil {
				return err
			}
			input := strings.Join(args, " ")

			if topK > 1 {
				candidates, err := parser.ParseMulti(input, topK)
				if err != nil {
					return err
				}
				for i, c := range candidates {
					fmt.Printf("parse %d (size %d):\n", i+1, c.Tree.Size())
					printCandidate(c.Tree, c.Result, asJSON)
				}
				return nil
			}

			tree, result, err := parser.Parse(input)
			if err != nil {
				return err
			}
			printCandidate(tree, result, asJSON)
			return nil
		},
	}

	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "colored-light", "built-in grammar to parse with")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "left-corner", "parsing strategy: left-corner, top-down, bottom-up")
	cmd.Flags().IntVar(&skipLimit, "skip-limit", parse.Unlimited, "max unknown tokens to skip (-1 = unlimited)")
	cmd.Flags().IntVar(&stepBudget, "steps", parse.Unlimited, "max rule firings per parse (-1 = unlimited)")
	cmd.Flags().IntVarP(&topK, "all", "k", 1, "print the top k parses")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tree and result as JSON")

	return cmd
}

func buildParser(grammarName, strategyName string, skipLimit, stepBudget int) (*parse.RobustParser, error) {
	g, err := grammars.ByName(grammarName)
	if err != nil {
		return nil, err
	}
	strategy := parse.StrategyByName(strategyName)
	if strategy == nil {
		return nil, fmt.Errorf("unknown strategy %q", strategyName)
	}
	return parse.NewRobustParser(g,
		parse.WithStrategy(strategy),
		parse.WithSkipLimit(skipLimit),
		parse.WithStepBudget(stepBudget),
	), nil
}

func printCandidate(tree *parse.TreeNode, result *parse.Result, asJSON bool) {
	if asJSON {
		data, err := json.MarshalIndent(tree.Dict(), "", "  ")
		if err == nil {
			fmt.Println(string(data))
		}
	} else {
		fmt.Print(tree)
	}
	if result != nil {
		fmt.Println(result)
	}
}
