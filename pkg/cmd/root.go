// Package cmd implements the seqtheory command-line tool: a Cobra command
// tree exactly like the teacher's pkg/cmd, wired against the theory core
// and its driverdemo reference engine rather than a corset compilation
// pipeline.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is filled in when building with make, but *not* when installing
// via "go install".
var Version string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "seqtheory",
	Short: "A decision procedure for the theory of finite sequences.",
	Long: `seqtheory drives the sequence-theory core standalone, against its
own in-process reference SAT engine, equality graph, and arithmetic
theory (driverdemo) - a real deployment embeds the core in a host
DPLL(T) solver instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			printVersion()
		} else {
			_ = cmd.Usage()
		}
	},
}

func printVersion() {
	if Version != "" {
		fmt.Printf("seqtheory %s\n", Version)
	} else {
		fmt.Println("seqtheory (unknown version)")
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(); it only needs to happen
// once for rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Int64("max-unfolding", 1, "initial max_unfolding_depth budget")
	rootCmd.PersistentFlags().Int64("length-limit", 16, "default length_limit(s,k) budget")
	rootCmd.PersistentFlags().String("arith-engine", "old", `arithmetic engine to report ("old" or "new")`)
	rootCmd.PersistentFlags().Bool("len-based-split", false, "enable the optional length-based split heuristic")
}
