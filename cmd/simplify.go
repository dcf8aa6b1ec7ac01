package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cottand/pixl/frontend/simplify"
	"github.com/cottand/pixl/pixl"
)

// NewSimplifyCmd prints the simplified form of a program.
func NewSimplifyCmd() *cobra.Command {
	var (
		expr       string
		showFacts  bool
		format     string
		noSimplify bool
	)
	c := &cobra.Command{
		Use:          "simplify [file.pxl]",
		Short:        "Simplify a program and print what is known about its values",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, filename, err := readProgram(expr, args)
			if err != nil {
				return err
			}
			opts, err := compileOptions(cmd, filename)
			if err != nil {
				return err
			}
			opts.NoSimplify = noSimplify
			p, err := pixl.Compile(cmd.Context(), src, opts)
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return printSimplified(cmd.OutOrStdout(), p, showFacts)
			case "yaml":
				return printSimplifiedYAML(cmd.OutOrStdout(), p, showFacts)
			}
			return fmt.Errorf("unknown format '%s', expected text or yaml", format)
		},
	}
	c.Flags().StringVarP(&expr, "expr", "e", "", "program to simplify, instead of a file")
	c.Flags().BoolVar(&showFacts, "facts", false, "print the facts known about every binding")
	c.Flags().StringVar(&format, "format", "text", "output format: text or yaml")
	c.Flags().BoolVar(&noSimplify, "no-simplify", false, "print the program as parsed")
	return c
}

func printSimplified(w io.Writer, p *pixl.Program, showFacts bool) error {
	if _, err := fmt.Fprintln(w, p.String()); err != nil {
		return err
	}
	if !showFacts {
		return nil
	}
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range p.Facts() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.Name, f.Type, f.Bounds, f.Alignment)
	}
	if p.Simplified.Result != nil {
		fmt.Fprintf(tw, "result\t%v\t%v\t%v\n", p.Simplified.Result.Type(), p.Result.Bounds, p.Result.Alignment)
	}
	return tw.Flush()
}

type simplifiedOutput struct {
	Program string         `yaml:"program"`
	Result  string         `yaml:"result,omitempty"`
	Facts   []pixl.Fact    `yaml:"facts,omitempty"`
	Stats   simplify.Stats `yaml:"stats"`
}

func printSimplifiedYAML(w io.Writer, p *pixl.Program, showFacts bool) error {
	out := simplifiedOutput{Program: p.String(), Stats: p.Stats}
	if p.Simplified.Result != nil {
		out.Result = p.Result.String()
	}
	if showFacts {
		out.Facts = p.Facts()
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}
