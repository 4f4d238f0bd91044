package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"google.golang.org/genai"

	"github.com/gtip/treasury"
	"github.com/gtip/treasury/agent"
)

// AssistCmd is the subcommand for the AI assistant.
type AssistCmd struct{}

func (*AssistCmd) Name() string { return "assist" }
func (*AssistCmd) Synopsis() string {
	return "start an interactive session with the AI treasury assistant"
}
func (*AssistCmd) Usage() string {
	return `tre assist [<initial prompt>]

  Starts an interactive chat session. The analyst expert answers from the
  data folder's snapshot; the economist grounds market questions with
  search. Requires Gemini credentials in the environment.
`
}

func (*AssistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	initialPrompt := ""
	if f.NArg() > 0 {
		initialPrompt = strings.Join(f.Args(), " ")
	}

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	load := func(on treasury.Date, currency string) (*treasury.Snapshot, error) {
		in, err := DecodeInputs()
		if err != nil {
			return nil, err
		}
		return treasury.NewSnapshot(on, currency, in)
	}

	economist := agent.NewEconomist()
	analyst := agent.NewAnalyst(load)
	a := agent.New(os.Stdout, os.Stdin, economist, analyst)

	if err := a.Run(ctx, client, initialPrompt); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
