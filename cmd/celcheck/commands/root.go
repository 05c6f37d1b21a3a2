// Package commands implements the celcheck CLI subcommands, following
// the teacher's cmd/sdl/commands layout: one cobra.Command per file,
// registered against a shared rootCmd in init().
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	containerFlag     string
	useStdlib         bool
	jsonOutput        bool
	verboseFlag       bool
	descriptorSetFlag string
)

var rootCmd = &cobra.Command{
	Use:   "celcheck",
	Short: "celcheck type-checks CEL expression ASTs against an environment",
	Long: `celcheck loads a JSON-encoded CEL expression tree and an environment
description, runs the checker, and reports the resolved type of every
subexpression or the issues found along the way.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&containerFlag, "container", "", "container namespace to resolve names against")
	rootCmd.PersistentFlags().BoolVar(&useStdlib, "stdlib", true, "register the standard library functions and types")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "log a trace of which overloads were tried during resolution")
	rootCmd.PersistentFlags().StringVar(&descriptorSetFlag, "descriptor-set", "", "path to a binary-encoded FileDescriptorSet to resolve struct types against")
}
