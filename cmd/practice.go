package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/card"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/grading"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/llm"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/scheduler"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/session"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ui"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run an interactive weighted review session",
	Long: `Draw cards in proportion to their weight, read an answer from stdin, grade
it and update the weight. Wrong answers make a card more likely to come back.
Enter "q" or send EOF to stop.`,
	RunE: runPractice,
}

func init() {
	practiceCmd.Flags().StringSlice("section", nil, "Only draw cards from these sections")
	practiceCmd.Flags().String("doc", "", "Only draw cards from this document")
	practiceCmd.Flags().IntP("rounds", "n", 0, "Stop after this many answers (0 = until quit)")
	practiceCmd.Flags().Bool("llm-grading", false, "Grade open answers with the configured model")
}

// newSession loads cards and stored weights and builds a session that
// records attempts into st.
func newSession(ctx context.Context, st *store.Store, docID string, llmGrading bool) (*session.Session, error) {
	cards, err := st.ListCards(ctx, docID)
	if err != nil {
		return nil, err
	}

	sched, err := scheduler.NewWithParams(cfg.SchedulerParams())
	if err != nil {
		return nil, fmt.Errorf("scheduler config: %w", err)
	}
	weights, err := st.LoadWeights(ctx)
	if err != nil {
		return nil, err
	}
	sched.Restore(weights)

	rules, err := grading.New(cfg.GradingSettings())
	if err != nil {
		return nil, fmt.Errorf("grading config: %w", err)
	}
	scorer := rules.AsScorer()
	var provider llm.Provider
	if llmGrading || cfg.Grading.UseLLM {
		provider = buildProvider(ctx, st)
		if provider != nil {
			scorer = grading.NewLLMGrader(provider, rules, grading.DefaultLLMConfig(), log)
		}
	}

	sess := session.New(session.Options{
		Cards:     cards,
		Scheduler: sched,
		Scorer:    scorer,
		Recorder:  st,
		Log:       log,
	})

	meta := store.Session{ID: sess.ID(), StartedAt: sess.StartedAt()}
	if provider != nil {
		meta.ModelName = provider.ModelID()
		meta.Temperature = cfg.LLM.Temperature
		meta.Seed = cfg.LLM.Seed
	}
	if err := st.SaveSession(ctx, meta); err != nil {
		return nil, err
	}
	return sess, nil
}

func runPractice(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sections, _ := cmd.Flags().GetStringSlice("section")
	docID, _ := cmd.Flags().GetString("doc")
	rounds, _ := cmd.Flags().GetInt("rounds")
	llmGrading, _ := cmd.Flags().GetBool("llm-grading")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := newSession(ctx, st, docID, llmGrading)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	out := ui.Writer(cmd.OutOrStdout())

	for n := 0; rounds <= 0 || n < rounds; n++ {
		c, weight, err := sess.Next(sections)
		if errors.Is(err, scheduler.ErrEmptyPool) {
			fmt.Fprintln(out, "No cards to practice. Run `rlpro cards generate <doc-id>` first.")
			return nil
		}
		if err != nil {
			return err
		}

		printCard(out, n+1, c, weight)
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			break
		}
		answer := strings.TrimSpace(in.Text())
		if answer == "q" {
			break
		}

		res, err := sess.Answer(ctx, c.ID, answer)
		if err != nil {
			log.Warn("attempt not recorded", "card_id", c.ID, "error", err)
		}
		printResult(out, c, res, sess.Scheduler())

		if err := st.SaveWeights(ctx, sess.Scheduler().Snapshot()); err != nil {
			return err
		}
	}
	if err := in.Err(); err != nil {
		return fmt.Errorf("read answer: %w", err)
	}

	printSummary(out, sess.Summary())
	return nil
}

func printCard(w io.Writer, round int, c card.Card, weight float64) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Heading.Render(fmt.Sprintf("[%d] %s", round, c.Type)), ui.Hint.Render(fmt.Sprintf("weight %.2f", weight)))
	fmt.Fprintln(w, c.Question)
	for _, opt := range c.Options {
		fmt.Fprintln(w, "  -", opt)
	}
}

func printResult(w io.Writer, c card.Card, res grading.Result, sched *scheduler.Scheduler) {
	weight, _ := sched.Weight(c.ID)
	fmt.Fprintf(w, "%s score %.2f via %s, new weight %.2f\n", ui.Verdict(res.IsCorrect), res.Score, res.Details.Method, weight)
	if !res.IsCorrect {
		fmt.Fprintln(w, "  answer:", c.Answer)
	}
	if res.Details.Feedback != "" {
		fmt.Fprintln(w, "  feedback:", res.Details.Feedback)
	}
}

func printSummary(w io.Writer, sum session.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, ui.Heading.Render("Session "+sum.SessionID))
	fmt.Fprintf(w, "Answered %d, correct %d (%.0f%%), average score %.2f\n",
		sum.Attempted, sum.Correct, sum.Accuracy*100, sum.AverageScore)
	if len(sum.Cards) == 0 {
		return
	}
	rows := make([][]string, 0, len(sum.Cards))
	for _, cp := range sum.Cards {
		rows = append(rows, []string{
			ui.Truncate(cp.CardID, 32),
			fmt.Sprintf("%d/%d", cp.CorrectCount, cp.TotalAttempts),
			fmt.Sprintf("%.2f", cp.Weight),
		})
	}
	fmt.Fprintln(w, ui.Table([]string{"Card", "Correct", "Weight"}, rows, 1, 2))
}
