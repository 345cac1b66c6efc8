// Command tutor is a terminal front end for the tutoring graph.
//
//	tutor chat --user ana --level A0 --language es "Hola"
//	tutor history --user ana
//	tutor new --user ana
//	tutor config show --yaml
//
// Settings come from an optional YAML or JSON file (--config), a .env file
// and the environment. Without DATABASE_URL the conversation lives in
// memory for the lifetime of the process; set sqlite_path for a local
// durable file.
package main

import (
	"fmt"
	"os"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
)

func main() {
	if err := newRootCmd(checkpoint.DefaultRegistry).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
