package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ui"
)

var gradeCmd = &cobra.Command{
	Use:   "grade <card-id> <answer...>",
	Short: "Grade one answer and update the card's weight",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		llmGrading, _ := cmd.Flags().GetBool("llm-grading")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := st.GetCard(ctx, args[0])
		if err != nil {
			return err
		}
		sess, err := newSession(ctx, st, "", llmGrading)
		if err != nil {
			return err
		}

		res, err := sess.Answer(ctx, c.ID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if err := st.SaveWeights(ctx, sess.Scheduler().Snapshot()); err != nil {
			return err
		}
		printResult(ui.Writer(cmd.OutOrStdout()), *c, res, sess.Scheduler())
		return nil
	},
}

func init() {
	gradeCmd.Flags().Bool("llm-grading", false, "Grade open answers with the configured model")
}
