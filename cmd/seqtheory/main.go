// Command seqtheory is the thin entrypoint for the seqtheory CLI: all
// argument parsing and subcommand dispatch lives in pkg/cmd.
package main

import "github.com/dpllt/seqtheory/pkg/cmd"

func main() {
	cmd.Execute()
}
