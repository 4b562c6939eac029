package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpllt/seqtheory/pkg/lang"
	"github.com/dpllt/seqtheory/pkg/theory"
)

// getFlag fetches an expected bool flag, or aborts if the flag was somehow
// never registered.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// getInt64 fetches an expected int64 flag, or aborts if the flag was
// somehow never registered.
func getInt64(cmd *cobra.Command, flag string) int64 {
	r, err := cmd.Flags().GetInt64(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// getString fetches an expected string flag, or aborts if the flag was
// somehow never registered.
func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// coreConfig builds a theory.Config from the persistent flags every
// subcommand shares.
func coreConfig(cmd *cobra.Command) theory.Config {
	return theory.Config{
		InitialUnfoldingDepth: getInt64(cmd, "max-unfolding"),
		DefaultLengthLimit:    getInt64(cmd, "length-limit"),
		EnableLenBasedSplit:   getFlag(cmd, "len-based-split"),
		ArithEngine:           getString(cmd, "arith-engine"),
	}
}

// readConstraintSource reads the constraint-language source a solve or
// automaton invocation is asked to run: the named file, or stdin when filename is
// "-" or absent.
func readConstraintSource(filename string) string {
	if filename == "" || filename == "-" {
		bytes, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		return string(bytes)
	}

	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return string(bytes)
}

// parseConstraints parses source into its top-level forms, reporting a
// syntax error with line/column highlighting in the teacher's
// printSyntaxError style and exiting on failure.
func parseConstraints(filename, source string) []lang.SExp {
	forms, err := lang.ParseAll(source)
	if err != nil {
		if se, ok := err.(*lang.SyntaxError); ok {
			printSyntaxError(filename, se.Message(), se.Span().Start(), se.Span().End(), source)
		} else {
			fmt.Println(err)
		}

		os.Exit(2)
	}

	return forms
}

// printSyntaxError prints a syntax error with appropriate highlighting,
// the same layout as the teacher's pkg/cmd.printSyntaxError.
func printSyntaxError(filename, msg string, start, end int, text string) {
	line, offset, num := findEnclosingLine(start, text)

	fmt.Printf("%s:%d: %s\n", filename, num, msg)
	fmt.Println(line)
	fmt.Print(strings.Repeat(" ", start-offset))
	fmt.Println(strings.Repeat("^", max(end-start, 1)))
}

// findEnclosingLine determines the enclosing line for the given index in a
// string.
func findEnclosingLine(index int, text string) (string, int, int) {
	num := 1
	start := 0

	if index >= len(text) {
		index = len(text) - 1
	}

	for i := 0; i < len(text); i++ {
		if i == index {
			return text[start:findEndOfLine(index, text)], start, num
		} else if text[i] == '\n' {
			num++
			start = i + 1
		}
	}

	return text[start:], start, num
}

// findEndOfLine finds the end of the enclosing line.
func findEndOfLine(index int, text string) int {
	for i := index; i < len(text); i++ {
		if text[i] == '\n' {
			return i
		}
	}

	return len(text)
}
