package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dpllt/seqtheory/pkg/lang"
	"github.com/dpllt/seqtheory/pkg/theory/automaton"
)

var automatonCmd = &cobra.Command{
	Use:   "automaton [flags] [file]",
	Short: "compile a regex term to a finite automaton and dump it.",
	Long: `Read a single regex expression, written in the constraint
language's regex syntax, compile it to a deterministic finite
automaton, and print its states, transitions, and accepting/sink
states.`,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		filename := ""
		if len(args) > 0 {
			filename = args[0]
		}

		source := readConstraintSource(filename)

		form, err := lang.Parse(source)
		if err != nil {
			if se, ok := err.(*lang.SyntaxError); ok {
				printSyntaxError(displayName(filename), se.Message(), se.Span().Start(), se.Span().End(), source)
			} else {
				fmt.Println(err)
			}

			os.Exit(2)
		}

		r, err := lang.ParseRegex(form)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		a := automaton.NewCompiler().Compile(r)
		printAutomaton(a)
	},
}

func printAutomaton(a *automaton.Automaton) {
	fmt.Printf("states: %d, start: %d\n", a.NStates, a.Start)

	for q := 0; q < a.NStates; q++ {
		tags := ""

		if a.Final[q] {
			tags += " final"
		}

		if a.Sink[q] {
			tags += " sink"
		}

		fmt.Printf("  state %d%s\n", q, tags)

		for _, e := range a.Edges[q] {
			if e.Lo == e.Hi {
				fmt.Printf("    %c -> %d\n", e.Lo, e.To)
			} else {
				fmt.Printf("    [%c-%c] -> %d\n", e.Lo, e.Hi, e.To)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(automatonCmd)
}
