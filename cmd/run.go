package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/cottand/pixl/pixl"
)

// NewRunCmd evaluates a program with the inputs given by --set.
func NewRunCmd() *cobra.Command {
	var (
		expr       string
		sets       []string
		noSimplify bool
	)
	c := &cobra.Command{
		Use:          "run [file.pxl] --set name=value...",
		Short:        "Evaluate a program",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filename, err := readProgram(expr, args)
			if err != nil {
				return err
			}
			inputs, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			opts, err := compileOptions(cmd, filename)
			if err != nil {
				return err
			}
			p, err := pixl.Compile(cmd.Context(), src, opts)
			if err != nil {
				return err
			}
			eval := p.Eval
			if noSimplify {
				eval = p.EvalSource
			}
			res, err := eval(inputs)
			if err != nil {
				return err
			}
			return printEvaluation(cmd.OutOrStdout(), res)
		},
	}
	c.Flags().StringVarP(&expr, "expr", "e", "", "program to run, instead of a file")
	c.Flags().StringArrayVar(&sets, "set", nil, "value of an input, as name=value")
	c.Flags().BoolVar(&noSimplify, "no-simplify", false, "run the program as parsed")
	return c
}

// printEvaluation writes every store sorted by buffer and index, then the
// result.
func printEvaluation(w io.Writer, res *pixl.Evaluation) error {
	for _, buffer := range slices.Sorted(maps.Keys(res.Memory)) {
		cells := res.Memory[buffer]
		for _, index := range slices.Sorted(maps.Keys(cells)) {
			if _, err := fmt.Fprintf(w, "%s[%d] = %d\n", buffer, index, cells[index]); err != nil {
				return err
			}
		}
	}
	if res.Result != nil {
		_, err := fmt.Fprintln(w, res.Result)
		return err
	}
	return nil
}
