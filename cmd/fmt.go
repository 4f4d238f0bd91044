package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/mattn/go-isatty"
)

// printJSON writes a report as indented JSON on stdout, for scripting.
func printJSON(report any) subcommands.ExitStatus {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintln(os.Stderr, "Error encoding report:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// printMarkdown renders a markdown report to the terminal. When stdout is not
// a terminal the raw markdown is printed, so output stays pipeable.
func printMarkdown(source string) {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Print(source)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(source)
		return
	}
	out, err := r.Render(source)
	if err != nil {
		fmt.Print(source)
		return
	}
	fmt.Print(out)
}
