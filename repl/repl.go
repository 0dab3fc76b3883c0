// SPDX-License-Identifier: Apache-2.0

// Package repl is an interactive driver for the combo engine: load a
// textual IR file, then either run it straight through or step the
// propagation/cause-splits fixed point one queue pop at a time, printing
// the partition/lattice delta combo.Stepper reports at each pop — a
// debugging aid for following spec.md's own worked examples one step at a
// time instead of only seeing a graph before and after a full Run.
//
// The teacher's own repl/repl.go imported kanso-lang/lexer and
// kanso-lang/parser, packages that exist nowhere in the teacher tree (dead
// code left over from before its grammar/internal/parser restructuring;
// nothing in the teacher repo calls repl.Start either). This file keeps
// the teacher's bufio.Scanner prompt loop shape but repoints parsing at
// internal/graph/parser and replaces "parse one line, print its AST" with
// "load one file, step its engine" — and cmd/combo-repl actually calls it.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"combo/internal/combo"
	"combo/internal/config"
	"combo/internal/dump"
	"combo/internal/graph"
	"combo/internal/graph/parser"
)

const prompt = "combo> "

// Start runs the REPL loop against in, writing prompts and output to out.
// Supported commands:
//
//	load <path>   parse a textual IR file and reset the stepper
//	step [n]      pop n queue entries (default 1), printing each
//	run           drain the rest of the queues and apply in one shot
//	graph         dump the current graph
//	report        dump the last run's report
//	help
//	quit
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	s := &session{out: out, cfg: config.Default()}

	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "load":
			s.load(args)
		case "step":
			s.step(args)
		case "run":
			s.run()
		case "graph":
			s.printGraph()
		case "report":
			s.printReport()
		case "help":
			printHelp(out)
		case "quit", "exit":
			return
		default:
			fmt.Fprintf(out, "unknown command %q; try \"help\"\n", cmd)
		}
	}
}

// session holds the REPL's mutable state across commands: the most
// recently loaded graph and the in-progress Stepper over it, if any.
type session struct {
	out io.Writer
	cfg config.Config

	g       *graph.Graph
	stepper *combo.Stepper
	report  combo.Report
	done    bool
}

func (s *session) load(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "usage: load <path>")
		return
	}
	g, err := parser.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "parse error: %v\n", err)
		return
	}
	stepper, err := combo.NewStepper(g, s.cfg)
	if err != nil {
		fmt.Fprintf(s.out, "engine error: %v\n", err)
		return
	}
	s.g = g
	s.stepper = stepper
	s.done = false
	fmt.Fprintf(s.out, "loaded %s\n", args[0])
}

func (s *session) step(args []string) {
	if s.stepper == nil {
		fmt.Fprintln(s.out, "no graph loaded; try \"load <path>\" first")
		return
	}
	if s.done {
		fmt.Fprintln(s.out, "fixed point already reached; try \"run\" to apply")
		return
	}

	n := 1
	if len(args) == 1 {
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil || n < 1 {
			fmt.Fprintln(s.out, "usage: step [n]")
			return
		}
	}

	for i := 0; i < n && !s.done; i++ {
		more, desc := s.stepper.Step()
		fmt.Fprintln(s.out, desc)
		s.done = !more
	}
}

func (s *session) run() {
	if s.stepper == nil {
		fmt.Fprintln(s.out, "no graph loaded; try \"load <path>\" first")
		return
	}
	for !s.done {
		more, desc := s.stepper.Step()
		fmt.Fprintln(s.out, desc)
		s.done = !more
	}
	s.report = s.stepper.Finish()
	s.stepper = nil
	fmt.Fprintln(s.out, "applied. use \"graph\"/\"report\" to inspect the result")
}

func (s *session) printGraph() {
	if s.g == nil {
		fmt.Fprintln(s.out, "no graph loaded")
		return
	}
	fmt.Fprint(s.out, dump.Graph(s.g, false))
}

func (s *session) printReport() {
	fmt.Fprint(s.out, dump.Report(s.report))
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "commands:")
	fmt.Fprintln(out, "  load <path>   parse a textual IR file and reset the stepper")
	fmt.Fprintln(out, "  step [n]      pop n queue entries (default 1), printing each")
	fmt.Fprintln(out, "  run           drain the rest of the queues and apply in one shot")
	fmt.Fprintln(out, "  graph         dump the current graph")
	fmt.Fprintln(out, "  report        dump the last run's report")
	fmt.Fprintln(out, "  quit")
}
