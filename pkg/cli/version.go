package cli

import (
	"flag"
	"fmt"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// newVersionCommand creates the version command
func newVersionCommand() *Command {
	fs := flag.NewFlagSet("version", flag.ExitOnError)

	return &Command{
		Name:        "version",
		Description: "Print the protocheck version",
		Flags:       fs,
		Run: func(args []string) error {
			fmt.Printf("protocheck %s\n", Version)
			return nil
		},
	}
}
