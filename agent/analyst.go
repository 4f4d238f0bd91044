package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/gtip/treasury"
	"github.com/gtip/treasury/renderer"
)

const model = "gemini-2.5-pro"

// SnapshotFunc builds the snapshot the analyst's tools run against. The
// caller decides where the records come from (data folder, store).
type SnapshotFunc func(on treasury.Date, currency string) (*treasury.Snapshot, error)

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is a corporate treasurer. He is here primarily to understand the
			organization's cash: where the liquidity sits, which settlements are due,
			whether the data can be trusted.

			Devise a plan of questions to ask each expert and come up with the best
			response to the user's request. Quote amounts with their currency.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewEconomist creates the expert for market context: rates, currencies,
// central bank news. It grounds its answers with Google Search.
func NewEconomist() *Expert {
	return &Expert{
		Name: "Economist",
		Description: `This is an expert economist,
		very well aware of the FX markets, central bank policy and the latest
		financial news. Ask the Economist whenever you need recent or grounding
		information about currencies, rates or the institutions behind them.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in macro economics and foreign exchange. You can search
			and find about anything related to currencies, interest rates, central
			banks and markets. You leverage Google Search to ground your assertions
			in a solid truth, and you know how to relate the latest news to the
			user's request.
				`}}},
		},
	}
}

// NewAnalyst creates the expert in charge of the organization's treasury
// data. Its tools compute the analytics reports from a fresh snapshot.
func NewAnalyst(load SnapshotFunc) *Expert {
	lib := analystLibrary(load)

	return &Expert{
		Name: "Analyst",
		Description: `This is the treasury Analyst. He has access to the
		organization's accounts, balances, FX rates, entities and cash pools.
		He can compute the liquidity position, propose netting settlements,
		report on cash pool health and check the data quality.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a treasury analyst in charge of the organization's cash data.
				You know how to use the Tools to compute the relevant figures: the
				global liquidity position, intercompany netting proposals, cash pool
				statuses and data-quality reports.
				You are part of a team of experts; yours is everything about the
				organization's own accounts and balances. Pardon approximative
				language and figure out what was meant.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

const dateDoc = `The as-of date of the snapshot. Today is the default.
Accepts YYYY-MM-DD and relative forms like "-3d", "-1m" or "0d".`

// analystLibrary builds the tool set over the snapshot loader. Every tool
// returns a markdown report, the same one the CLI prints.
func analystLibrary(load SnapshotFunc) []Function {
	report := func(name string, args map[string]any, render func(*treasury.Snapshot) string) *genai.FunctionResponse {
		fresp := &genai.FunctionResponse{Name: name, Response: map[string]any{}}

		on, currency, err := parseArgs(args)
		if err != nil {
			fresp.Response["error"] = err.Error()
			return fresp
		}
		s, err := load(on, currency)
		if err != nil {
			fresp.Response["error"] = err.Error()
			return fresp
		}
		fresp.Response["output"] = render(s)
		return fresp
	}

	dateAndCurrency := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"date": {Type: genai.TypeString, Description: dateDoc},
			"currency": {Type: genai.TypeString,
				Description: "The reporting currency, a 3-letter code like USD. USD is the default."},
		},
	}

	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Position",
				Description: `Position computes the global liquidity position: total cash
				across all accounts normalized to the reporting currency, broken down by
				region and by local currency.`,
				Parameters: dateAndCurrency,
				Response:   &genai.Schema{Type: genai.TypeString, Description: "A markdown report of the global position."},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				fresp := report("Position", args, func(s *treasury.Snapshot) string {
					return renderer.PositionMarkdown(s.GlobalPosition())
				})
				fresp.ID = id
				return fresp
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Netting",
				Description: `Netting proposes the minimal set of intercompany settlements
				that zeroes every entity's net position, in the reporting currency.`,
				Parameters: dateAndCurrency,
				Response:   &genai.Schema{Type: genai.TypeString, Description: "A markdown report of the proposed settlements."},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				fresp := report("Netting", args, func(s *treasury.Snapshot) string {
					return renderer.NettingMarkdown(s.Netting(treasury.NettingOptions{}))
				})
				fresp.ID = id
				return fresp
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Pools",
				Description: `Pools reports the status of every cash pool: participants,
				aggregate balance and concentration efficiency.`,
				Parameters: dateAndCurrency,
				Response:   &genai.Schema{Type: genai.TypeString, Description: "A markdown table of pool statuses."},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				fresp := report("Pools", args, func(s *treasury.Snapshot) string {
					statuses, _ := s.PoolStatuses()
					return renderer.PoolsMarkdown(statuses)
				})
				fresp.ID = id
				return fresp
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Validation",
				Description: `Validation runs the data-quality rules over the snapshot:
				missing balances, duplicates, negative cash, balances with no rate path.`,
				Parameters: dateAndCurrency,
				Response:   &genai.Schema{Type: genai.TypeString, Description: "A markdown report of the data-quality issues."},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				fresp := report("Validation", args, func(s *treasury.Snapshot) string {
					return renderer.ValidationMarkdown(s.Validate())
				})
				fresp.ID = id
				return fresp
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Summary",
				Description: `Summary is the at-a-glance treasury overview: total
				liquidity, pending settlements, data-quality issues and top entities.`,
				Parameters: dateAndCurrency,
				Response:   &genai.Schema{Type: genai.TypeString, Description: "A markdown overview of the treasury."},
			},
			Fn: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				fresp := report("Summary", args, func(s *treasury.Snapshot) string {
					return renderer.SummaryMarkdown(s.AnalyticsSummary())
				})
				fresp.ID = id
				return fresp
			},
		},
	}
}

func parseArgs(args map[string]any) (treasury.Date, string, error) {
	on := treasury.Today()
	if idate, ok := args["date"]; ok {
		sdate, ok := idate.(string)
		if !ok {
			return on, "", fmt.Errorf("argument 'date' is not a string as expected but %T", idate)
		}
		var err error
		if on, err = treasury.ParseDate(sdate); err != nil {
			return on, "", fmt.Errorf("argument 'date' must be a valid date, got %q: %w", sdate, err)
		}
	}

	currency := "USD"
	if icur, ok := args["currency"]; ok {
		scur, ok := icur.(string)
		if !ok {
			return on, "", fmt.Errorf("argument 'currency' is not a string as expected but %T", icur)
		}
		if err := treasury.ValidateCurrency(scur); err != nil {
			return on, "", err
		}
		currency = scur
	}
	return on, currency, nil
}
