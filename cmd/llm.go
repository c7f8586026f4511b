package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ui"
)

const stamp = "2006-01-02 15:04:05"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded LLM calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		out := ui.Writer(cmd.OutOrStdout())
		if len(events) == 0 {
			fmt.Fprintln(out, "No LLM calls recorded.")
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format(stamp),
				e.Purpose,
				ui.Truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ui.Verdict(e.Success),
			})
		}
		fmt.Fprintln(out, ui.Table(
			[]string{"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "Result"},
			rows, 0, 4, 5, 6))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and reply of one LLM call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		e, err := st.GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		out := ui.Writer(cmd.OutOrStdout())
		fields := [][2]string{
			{"Time", e.Timestamp.Local().Format(stamp)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in, %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Result", ui.Verdict(e.Success)},
		}
		if e.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", e.ErrorMessage})
		}
		fmt.Fprintln(out, ui.Heading.Render(fmt.Sprintf("LLM call #%d", e.ID)))
		for _, f := range fields {
			fmt.Fprintf(out, "  %-9s %s\n", f[0]+":", f[1])
		}
		printBody(out, "Request", e.RequestBody)
		printBody(out, "Response", e.ResponseBody)
		return nil
	},
}

func printBody(w io.Writer, title, body string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Heading.Render(title))
	if strings.TrimSpace(body) == "" {
		fmt.Fprintln(w, ui.Hint.Render("(not captured)"))
		return
	}
	fmt.Fprintln(w, body)
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		byPurpose, err := st.LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		out := ui.Writer(cmd.OutOrStdout())
		if len(byPurpose) == 0 {
			fmt.Fprintln(out, "No LLM usage recorded yet.")
			return nil
		}
		byModel, err := st.LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		fmt.Fprintln(out, ui.Heading.Render("Usage by purpose"))
		fmt.Fprintln(out, ui.Table(
			[]string{"Purpose", "Calls", "Input", "Output", "Avg ms"},
			purposeRows(byPurpose), 1, 2, 3, 4))

		rows, unpriced := costRows(byModel)
		fmt.Fprintln(out, ui.Heading.Render("Estimated cost (USD)"))
		fmt.Fprintln(out, ui.Table([]string{"Model", "Calls", "Input", "Output", "Cost"}, rows, 1, 2, 3, 4))
		if len(unpriced) > 0 {
			fmt.Fprintln(out, ui.Hint.Render("No pricing for: "+strings.Join(unpriced, ", ")))
		}
		return nil
	},
}

func purposeRows(usage []store.LLMPurposeUsage) [][]string {
	var calls, in, outTok int
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		rows = append(rows, []string{u.Purpose, strconv.Itoa(u.Calls),
			strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10)})
		calls += u.Calls
		in += u.InputTokens
		outTok += u.OutputTokens
	}
	return append(rows, []string{"total", strconv.Itoa(calls), strconv.Itoa(in), strconv.Itoa(outTok), ""})
}

// costRows prices each model's usage. Models without a price list are
// shown with "?" and returned so the total can be flagged as partial.
func costRows(usage []store.LLMModelUsage) ([][]string, []string) {
	var (
		total    float64
		unpriced []string
	)
	rows := make([][]string, 0, len(usage)+1)
	for _, u := range usage {
		cost := "?"
		if p := llm.LookupCost(u.Model); p != nil {
			c := p.Cost(u.InputTokens, u.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, u.Model)
		}
		rows = append(rows, []string{ui.Truncate(u.Model, 32), strconv.Itoa(u.Calls),
			strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost})
	}
	label := "total"
	if len(unpriced) > 0 {
		label = "total (partial)"
	}
	return append(rows, []string{label, "", "", "", formatCost(total)}), unpriced
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show one purpose: "+
		strings.Join([]string{llm.PurposeCardAuthoring, llm.PurposeAnswerGrading, llm.PurposeTeachingNote}, ", "))

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
