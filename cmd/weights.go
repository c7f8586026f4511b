package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ui"
)

const barWidth = 30

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the card weight table and draw probabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		sortByWeight, _ := cmd.Flags().GetBool("sort")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		entries, err := st.LoadWeights(cmd.Context())
		if err != nil {
			return err
		}
		out := ui.Writer(cmd.OutOrStdout())
		if len(entries) == 0 {
			fmt.Fprintln(out, "No weights recorded yet.")
			return nil
		}
		if sortByWeight {
			sort.SliceStable(entries, func(i, j int) bool { return entries[i].Weight > entries[j].Weight })
		}

		var total, peak float64
		for _, e := range entries {
			total += e.Weight
			peak = max(peak, e.Weight)
		}
		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				ui.Truncate(e.ID, 32),
				fmt.Sprintf("%.2f", e.Weight),
				fmt.Sprintf("%.1f%%", e.Weight/total*100),
				ui.Bar(e.Weight, peak, barWidth),
			})
		}
		fmt.Fprintln(out, ui.Table([]string{"Card", "Weight", "P", ""}, rows, 1, 2))
		return nil
	},
}

func init() {
	weightsCmd.Flags().BoolP("sort", "s", false, "Sort by weight, highest first")
}
