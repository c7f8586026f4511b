package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/authoring"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ui"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "Author, list and explain practice cards",
}

var cardsGenerateCmd = &cobra.Command{
	Use:   "generate <doc-id>",
	Short: "Author cards for every segment of a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		docID := args[0]
		noLLM, _ := cmd.Flags().GetBool("no-llm")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		if _, err := s.GetDocument(ctx, docID); err != nil {
			return err
		}
		segments, err := s.ListSegments(ctx, docID)
		if err != nil {
			return fmt.Errorf("list segments: %w", err)
		}
		if len(segments) == 0 {
			return fmt.Errorf("document %s has no segments; run ingest first", docID)
		}

		var author authoring.Author = authoring.HeuristicAuthor{}
		if !noLLM {
			if provider := buildProvider(ctx, s); provider != nil {
				author = authoring.NewLLMAuthor(provider, authoring.DefaultConfig(), log)
			}
		}

		out, err := authoring.AuthorAll(ctx, author, segments)
		if err != nil {
			return err
		}
		if err := s.SaveCards(ctx, docID, out.Cards); err != nil {
			return err
		}

		fallbacks := 0
		for _, c := range out.Cards {
			if c.IsFallback() {
				fallbacks++
			}
		}
		w := ui.Writer(cmd.OutOrStdout())
		fmt.Fprintf(w, "Authored %d cards from %d segments (%d fallback)\n", len(out.Cards), len(segments), fallbacks)
		if len(out.Errors) > 0 {
			fmt.Fprintln(w, ui.Incorrect.Render(fmt.Sprintf("%d cards rejected:", len(out.Errors))))
			for _, e := range out.Errors {
				fmt.Fprintln(w, "  -", e)
			}
		}
		return nil
	},
}

var cardsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		docID, _ := cmd.Flags().GetString("doc")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		cards, err := s.ListCards(cmd.Context(), docID)
		if err != nil {
			return err
		}
		out := ui.Writer(cmd.OutOrStdout())
		if len(cards) == 0 {
			fmt.Fprintln(out, "No cards found.")
			return nil
		}

		rows := make([][]string, 0, len(cards))
		for _, c := range cards {
			rows = append(rows, []string{ui.Truncate(c.ID, 32), string(c.Type), ui.Truncate(c.Question, 48)})
		}
		fmt.Fprintln(out, ui.Table([]string{"ID", "Type", "Question"}, rows))
		return nil
	},
}

var cardsExplainCmd = &cobra.Command{
	Use:   "explain <card-id>",
	Short: "Write a teaching note for a card from its source text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.GetCard(ctx, args[0])
		if err != nil {
			return err
		}
		source := c.SourceSnippet
		if c.SourceID != "" {
			seg, err := s.GetSegment(ctx, c.SourceID)
			switch {
			case err == nil:
				source = seg.Text
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		explainer := authoring.NewExplainer(buildProvider(ctx, s), authoring.DefaultExplainConfig(), log)
		note := explainer.Explain(ctx, *c, source)

		w := ui.Writer(cmd.OutOrStdout())
		fmt.Fprintln(w, ui.Heading.Render(c.Question))
		fmt.Fprintln(w, note.Text)
		if len(note.Prompts) > 0 {
			fmt.Fprintln(w)
			for _, p := range note.Prompts {
				fmt.Fprintln(w, ui.Hint.Render("? "+p))
			}
		}
		return nil
	},
}

func init() {
	cardsGenerateCmd.Flags().Bool("no-llm", false, "Use the heuristic author only")
	cardsListCmd.Flags().String("doc", "", "Only list cards of this document")

	cardsCmd.AddCommand(cardsGenerateCmd, cardsListCmd, cardsExplainCmd)
}
