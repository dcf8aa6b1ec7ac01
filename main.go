//go:build !(js || wasm)

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cottand/pixl/cmd"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "pixl [subcommand]",
	Short:        "pixl simplifies integer programs using what it can prove about their values",
	SilenceUsage: true,
}

func init() {
	cmd.RegisterGlobalFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(cmd.NewSimplifyCmd())
	rootCmd.AddCommand(cmd.NewBuildCmd())
	rootCmd.AddCommand(cmd.NewRunCmd())
	rootCmd.AddCommand(cmd.NewReplCmd())
}
