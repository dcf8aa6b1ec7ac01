package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cottand/pixl/pixl"
)

// NewBuildCmd lowers a program to Go. Without --out the source is printed.
func NewBuildCmd() *cobra.Command {
	var (
		expr    string
		outPath string
		pkgName string
	)
	c := &cobra.Command{
		Use:          "build [file.pxl]",
		Short:        "Lower a simplified program to Go",
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
			p, err := pixl.Compile(cmd.Context(), src, opts)
			if err != nil {
				return err
			}
			if outPath != "" {
				if err := p.WriteGoModule(outPath, pkgName); err != nil {
					return fmt.Errorf("could not write module: %w", err)
				}
				return nil
			}
			goSrc, err := p.GoSource()
			if err != nil {
				return fmt.Errorf("could not transpile program: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), goSrc)
			return err
		},
	}
	c.Flags().StringVarP(&expr, "expr", "e", "", "program to build, instead of a file")
	c.Flags().StringVarP(&outPath, "out", "o", "", "directory to write a Go module into")
	c.Flags().StringVar(&pkgName, "package", "pixlprogram", "name of the generated module and package")
	return c
}
