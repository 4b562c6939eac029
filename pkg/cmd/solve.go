package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dpllt/seqtheory/pkg/lang"
	"github.com/dpllt/seqtheory/pkg/theory"
	"github.com/dpllt/seqtheory/pkg/theory/driverdemo"
	"github.com/dpllt/seqtheory/pkg/theory/pipeline"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

var solveCmd = &cobra.Command{
	Use:   "solve [flags] [file]",
	Short: "solve a conjunction of sequence constraints, read from a file or stdin.",
	Long: `Read a conjunction of sequence constraints - equations,
disequations, not-contains, regex membership, and length bounds -
written in the s-expression constraint language, and report sat,
unsat, or unknown.`,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		filename := ""
		if len(args) > 0 {
			filename = args[0]
		}

		source := readConstraintSource(filename)
		forms := parseConstraints(displayName(filename), source)

		m := term.NewManager()
		sat := driverdemo.NewSAT()
		sink := driverdemo.NewSink(sat)
		arith := driverdemo.NewArith(getString(cmd, "arith-engine"))

		c, err := theory.NewCore(
			coreConfig(cmd), m, sat, driverdemo.NewGraph(), arith,
			driverdemo.Atoms{}, sink, driverdemo.Rewriter{}, driverdemo.Nested{},
			driverdemo.NewPropagator(),
		)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		sat.Notify = c.AssignLiteral

		b := lang.NewBuilder(m, c, arith)

		for _, form := range forms {
			if err := b.Assert(form); err != nil {
				fmt.Println(err)
				os.Exit(2)
			}
		}

		res := c.Run()
		printSolveResult(res, sat)

		if getFlag(cmd, "verbose") {
			c.Dump(os.Stdout)
		}
	},
}

// printSolveResult maps a pipeline.Result plus the SAT engine's conflict
// flag onto the usual sat/unsat/unknown triad: Giveup means this module's
// rule cascade ran out of applicable rules without reaching a fixed point,
// the honest "unknown" answer for an incomplete decision procedure run
// standalone against a reference engine with no real search.
func printSolveResult(res pipeline.Result, sat *driverdemo.SAT) {
	switch {
	case sat.Conflicted:
		fmt.Println("unsat")
	case res == pipeline.Done:
		fmt.Println("sat")
	default:
		fmt.Println("unknown")
	}
}

func displayName(filename string) string {
	if filename == "" {
		return "<stdin>"
	}

	return filename
}

func init() {
	rootCmd.AddCommand(solveCmd)
}
