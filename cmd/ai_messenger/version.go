package main

import (
	"fmt"
	"io"

	"ai_messenger/pkg/ai"
	"ai_messenger/pkg/version"
)

// printVersion prints build information and the providers compiled in.
func printVersion(w io.Writer) {
	fmt.Fprint(w, version.Details())
	fmt.Fprintln(w, "  providers:")
	for _, p := range ai.ListProviders() {
		fmt.Fprintf(w, "    %-7s %s\n", p.Type, p.Description)
	}
}
