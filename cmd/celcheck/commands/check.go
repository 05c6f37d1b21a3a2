package commands

import (
	"fmt"
	"log"
	"os"

	"github.com/panyam/celcheck/ast"
	"github.com/panyam/celcheck/cel"
	"github.com/panyam/celcheck/internal/celparse"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <ast.json> <env.json>",
	Short: "Type-checks a JSON-encoded CEL expression against an environment",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		astPath, envPath := args[0], args[1]

		data, err := os.ReadFile(astPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", astPath, err)
			os.Exit(1)
		}
		expr, sourceInfo, err := celparse.Parse(data, astPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error parsing %s: %v\n", astPath, err)
			os.Exit(1)
		}

		env, err := loadEnv(envPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading environment %s: %v\n", envPath, err)
			os.Exit(1)
		}

		log.SetPrefix("celcheck: ")
		checked, issues, err := cel.Check(expr, sourceInfo, env)
		if err != nil {
			fmt.Fprintf(os.Stderr, "internal error: %v\n", err)
			os.Exit(2)
		}

		fmt.Println(cel.Summary(issues))
		for _, issue := range issues {
			fmt.Println(issue.String())
		}

		if checked == nil {
			os.Exit(1)
		}

		cp := ast.NewCodePrinter()
		ast.PrintChecked(cp, checked)
		fmt.Print(cp.String())
	},
}

func init() {
	AddCommand(checkCmd)
}
