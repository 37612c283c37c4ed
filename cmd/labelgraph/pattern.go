package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/labelgraph/internal/lquery"
	"github.com/dusk-indust/labelgraph/internal/ltxtquery"
)

func newPatternCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "pattern",
		Short:       "Check boolean label patterns without a database",
		Annotations: map[string]string{noStore: "true"},
	}

	validate := &cobra.Command{
		Use:         "validate <pattern>",
		Short:       "Report whether a pattern parses",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{noStore: "true"},
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := ltxtquery.Parse(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "valid")
			return nil
		},
	}

	native := &cobra.Command{
		Use:         "native <pattern>",
		Short:       "Print the pattern in PostgreSQL ltxtquery syntax",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{noStore: "true"},
		RunE: func(_ *cobra.Command, args []string) error {
			out, err := ltxtquery.ToNative(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}

	var glob bool
	test := &cobra.Command{
		Use:         "test <pattern> <path>...",
		Short:       "Evaluate a pattern against each path",
		Args:        cobra.MinimumNArgs(2),
		Annotations: map[string]string{noStore: "true"},
		RunE: func(_ *cobra.Command, args []string) error {
			match, err := matcher(args[0], glob)
			if err != nil {
				return err
			}
			for _, p := range args[1:] {
				mark := "no "
				if match(p) {
					mark = "yes"
				}
				fmt.Fprintf(a.out, "  %s  %s\n", mark, p)
			}
			return nil
		},
	}
	test.Flags().BoolVar(&glob, "glob", false, "treat the pattern as a path pattern (tech.*) instead of a boolean label pattern")

	cmd.AddCommand(validate, native, test)
	return cmd
}

func matcher(pattern string, glob bool) (func(string) bool, error) {
	if glob {
		p, err := lquery.Compile(pattern)
		if err != nil {
			return nil, err
		}
		return p.Match, nil
	}
	pred, err := ltxtquery.ToPredicate(pattern)
	if err != nil {
		return nil, err
	}
	return pred, nil
}
