// Command combo-cli loads a textual IR file, runs the combo pass against
// it, and prints the rewritten graph and run report.
//
// Grounded on the teacher's cmd/kanso-cli/main.go / root main.go: one
// required positional file argument (alongside the -config and -no-color
// flags), caret-style parse-error reporting, color.Green/color.Red banners.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"combo/internal/combo"
	"combo/internal/config"
	"combo/internal/dump"
	"combo/internal/graph/parser"
)

func main() {
	configPath := flag.String("config", "", "path to a combo.yaml config file (defaults to config.Default())")
	noColor := flag.Bool("no-color", false, "disable colorized output")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: combo-cli [-config path] [-no-color] <file.combo-ir>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			color.Red("failed to load config: %s", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	g, err := parser.ParseFile(path)
	if err != nil {
		// parser.ParseString already printed a caret diagram for syntax
		// errors; anything else (unknown opcode, dangling reference) just
		// needs the message itself.
		color.Red("failed to parse %s: %s", path, err)
		os.Exit(1)
	}

	report, err := combo.Run(g, cfg)
	if err != nil {
		color.Red("combo.Run failed: %s", err)
		os.Exit(1)
	}

	useColor := !*noColor
	fmt.Print(dump.Graph(g, useColor))
	fmt.Println()
	fmt.Print(dump.Report(report))

	color.Green("✅ processed %s", path)
}
