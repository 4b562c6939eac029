package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	xterm "golang.org/x/term"

	"github.com/dpllt/seqtheory/pkg/lang"
	"github.com/dpllt/seqtheory/pkg/theory"
	"github.com/dpllt/seqtheory/pkg/theory/driverdemo"
	"github.com/dpllt/seqtheory/pkg/theory/term"
)

var replCmd = &cobra.Command{
	Use:   "repl [flags]",
	Short: "build up a constraint set incrementally, one form at a time.",
	Long: `An interactive session for asserting constraints one at a time,
pushing and popping scopes, running the pipeline to a fixed point, and
inspecting the solution map - the line-based counterpart to the
teacher's full-screen trace inspector, built on the same raw-terminal
package.`,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}

		runRepl(coreConfig(cmd))
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cfg theory.Config) {
	fd := int(os.Stdin.Fd())

	if !xterm.IsTerminal(fd) {
		runReplOn(cfg, os.Stdin, os.Stdout, false)
		return
	}

	state, err := xterm.MakeRaw(fd)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	defer xterm.Restore(fd, state) //nolint:errcheck // best-effort terminal restore on exit

	screen := struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}

	runReplOn(cfg, screen, screen, true)
}

// replIO is the subset of *xterm.Terminal's behaviour the REPL loop needs,
// so it can run against either a raw terminal or a plain pipe (tests,
// piped stdin) without the loop itself caring which.
type replIO interface {
	ReadLine() (string, error)
	Write(p []byte) (int, error)
}

type plainIO struct {
	in  io.Reader
	out io.Writer
	buf []byte
}

func (p *plainIO) ReadLine() (string, error) {
	for {
		for i, b := range p.buf {
			if b == '\n' {
				line := string(p.buf[:i])
				p.buf = p.buf[i+1:]

				return strings.TrimRight(line, "\r"), nil
			}
		}

		chunk := make([]byte, 4096)

		n, err := p.in.Read(chunk)
		if n > 0 {
			p.buf = append(p.buf, chunk[:n]...)
		}

		if err != nil {
			if len(p.buf) > 0 {
				line := string(p.buf)
				p.buf = nil

				return line, nil
			}

			return "", err
		}
	}
}

func (p *plainIO) Write(b []byte) (int, error) { return p.out.Write(b) }

func runReplOn(cfg theory.Config, in io.Reader, out io.Writer, raw bool) {
	var session replIO

	if raw {
		screen := struct {
			io.Reader
			io.Writer
		}{in, out}
		session = xterm.NewTerminal(screen, "seqtheory> ")
	} else {
		session = &plainIO{in: in, out: out}
	}

	m := term.NewManager()
	sat := driverdemo.NewSAT()
	sink := driverdemo.NewSink(sat)
	arith := driverdemo.NewArith(cfg.ArithEngine)

	c, err := theory.NewCore(
		cfg, m, sat, driverdemo.NewGraph(), arith, driverdemo.Atoms{}, sink,
		driverdemo.Rewriter{}, driverdemo.Nested{}, driverdemo.NewPropagator(),
	)
	if err != nil {
		fmt.Fprintln(out, err)
		return
	}

	sat.Notify = c.AssignLiteral
	b := lang.NewBuilder(m, c, arith)

	for {
		line, err := session.ReadLine()
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if handled := replCommand(c, sat, session, line); handled {
			continue
		}

		form, err := lang.Parse(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}

		if err := b.Assert(form); err != nil {
			fmt.Fprintln(out, err)
		}
	}
}

func replCommand(c *theory.Core, sat *driverdemo.SAT, session replIO, line string) bool {
	switch line {
	case ":push":
		c.PushScope()
	case ":pop":
		c.PopScope(1)
	case ":run":
		res := c.Run()
		printSolveResult(res, sat)
	case ":dump":
		var b strings.Builder
		c.Dump(&b)
		fmt.Fprint(session, b.String())
	case ":quit", ":exit":
		os.Exit(0)
	default:
		return false
	}

	return true
}
