// Command surtype analyzes SurrealQL queries against a declared schema
// and generates typed result bindings.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/surtype"
	"github.com/syssam/surtype/compiler"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "surtype",
	Short:         "Static type analysis for SurrealQL queries",
	Long:          "surtype checks SurrealQL query files against the project schema and generates typed result declarations for TypeScript or Go clients.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Analyze all queries and write the generated bindings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := load()
		if err != nil {
			return err
		}
		if err := c.Run(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", c.Config.Output.Path)
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Analyze all queries and report diagnostics without writing output",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := load()
		if err != nil {
			return err
		}
		return c.Check(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate bindings whenever a schema or query file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := load()
		if err != nil {
			return err
		}
		return c.Watch(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to surtype.yaml (default: nearest parent)")
	rootCmd.AddCommand(generateCmd, checkCmd, watchCmd)
}

func load() (*compiler.Compiler, error) {
	path := configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		path, err = compiler.FindConfig(wd)
		if err != nil {
			return nil, err
		}
	}
	return compiler.New(path)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Analysis errors were already reported line by line.
		if !surtype.IsAnalysisError(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
