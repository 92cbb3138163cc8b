package main

import (
	"flag"
	"fmt"
	"io"
	"slices"
)

const COMMAND_DESCRIPTION = "stylelint-ls is a language server for stylesheets, it warns when the workspace uses an unsupported version of stylelint."

func showHelp(flags *flag.FlagSet, args []string, out io.Writer) bool {
	//only show help
	if slices.Contains(args, "-h") || slices.Contains(args, "--help") {
		fmt.Fprintln(out, COMMAND_DESCRIPTION)

		flags.SetOutput(out)
		fmt.Fprint(out, "\noptions:\n")
		flags.PrintDefaults()

		return true
	}

	return false
}
