package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <env.json>",
	Short: "Lists the variables and struct types declared by an environment file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error reading %s: %v\n", args[0], err)
			os.Exit(1)
		}
		var spec envSpec
		if err := unmarshalEnvSpec(data, &spec); err != nil {
			fmt.Fprintf(os.Stderr, "error decoding %s: %v\n", args[0], err)
			os.Exit(1)
		}

		names := make([]string, len(spec.Variables))
		for i, v := range spec.Variables {
			names[i] = fmt.Sprintf("%s: %s", v.Name, v.Type)
		}
		sort.Strings(names)
		fmt.Println("variables:")
		for _, n := range names {
			fmt.Println("  " + n)
		}

		fmt.Println("types:")
		typeNames := make([]string, len(spec.Types))
		for i, t := range spec.Types {
			typeNames[i] = t.Name
		}
		sort.Strings(typeNames)
		for _, n := range typeNames {
			fmt.Println("  " + n)
		}
	},
}

func init() {
	AddCommand(describeCmd)
}
