// Command celcheck type-checks JSON-encoded CEL expression trees against
// a JSON-described environment. See commands for the check and describe
// subcommands.
package main

import "github.com/panyam/celcheck/cmd/celcheck/commands"

func main() {
	commands.Execute()
}
