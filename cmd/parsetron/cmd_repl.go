package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/kitt-ai/parsetron/parse"
)

func newReplCmd() *cobra.Command {
	var (
		grammarName  string
		strategyName string
		incremental  bool
	)

	cmd := &cobra.Command{
		Use:           "repl",
		Short:         "Parse utterances interactively",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := buildParser(grammarName, strategyName, parse.Unlimited, parse.Unlimited)
			if err != nil {
				return err
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)

			fmt.Printf("grammar: %s (empty line or ctrl-d to exit)\n", grammarName)
			for {
				input, err := line.Prompt("> ")
				if err == io.EOF || err == liner.ErrPromptAborted {
					return nil
				}
				if err != nil {
					return err
				}
				if strings.TrimSpace(input) == "" {
					return nil
				}
				line.AppendHistory(input)
				replParse(parser, input, incremental)
			}
		},
	}

	cmd.Flags().StringVarP(&grammarName, "grammar", "g", "colored-light", "built-in grammar to parse with")
	cmd.Flags().StringVarP(&strategyName, "strategy", "s", "left-corner", "parsing strategy: left-corner, top-down, bottom-up")
	cmd.Flags().BoolVarP(&incremental, "incremental", "i", false, "print prefix parses as they improve")

	return cmd
}

func replParse(parser *parse.RobustParser, input string, incremental bool) {
	var tree *parse.TreeNode
	var result *parse.Result
	var err error

	if incremental {
		tree, result, err = parser.ParseIncremental(input, func(p parse.Prefix) bool {
			if p.Improved && p.Tree != nil {
				fmt.Printf("prefix through token %d: %q\n", p.End, p.Tree.Text())
			}
			return false
		})
	} else {
		tree, result, err = parser.Parse(input)
	}

	if err != nil {
		fmt.Println(err)
		if suggestions := parser.Suggest(input); len(suggestions) > 0 {
			fmt.Printf("expected next: %s\n", strings.Join(suggestions, ", "))
		}
		return
	}
	fmt.Print(tree)
	fmt.Println(result)
}
