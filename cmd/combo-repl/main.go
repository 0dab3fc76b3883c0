// Command combo-repl runs repl.Start against stdin/stdout, the interactive
// front end for stepping the combo engine one queue pop at a time.
package main

import (
	"os"

	"combo/repl"
)

func main() {
	repl.Start(os.Stdin, os.Stdout)
}
