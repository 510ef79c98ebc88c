package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print solve history statistics",
	Run:   printStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func printStats(_ *cobra.Command, _ []string) {
	defer StopApp()

	ctx := context.Background()
	stats, err := solveUsecase.Stats(ctx)
	if err != nil {
		logrus.Errorf("[SOLVE] %v", err)
		return
	}
	records, err := solveUsecase.List(ctx)
	if err != nil {
		logrus.Errorf("[SOLVE] %v", err)
		return
	}

	precision := settings.Effective().TimerPrecision
	seconds := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.*f", precision, *v)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Solves\t%s\n", humanize.Comma(int64(stats.TotalSolves)))
	fmt.Fprintf(w, "DNF\t%s\n", humanize.Comma(int64(stats.DNFCount)))
	if len(records) > 0 {
		fmt.Fprintf(w, "Last solve\t%s\n", humanize.Time(records[len(records)-1].Timestamp))
	}
	fmt.Fprintf(w, "Best\t%s\n", seconds(stats.BestSingle))
	fmt.Fprintf(w, "Worst\t%s\n", seconds(stats.WorstSingle))
	fmt.Fprintf(w, "Mean\t%s\n", seconds(stats.SessionMean))
	fmt.Fprintf(w, "Mo3\t%s\n", seconds(stats.Mo3))
	fmt.Fprintf(w, "Ao5\t%s\n", seconds(stats.Ao5))
	fmt.Fprintf(w, "Ao12\t%s\n", seconds(stats.Ao12))
	fmt.Fprintf(w, "Ao50\t%s\n", seconds(stats.Ao50))
	fmt.Fprintf(w, "Ao100\t%s\n", seconds(stats.Ao100))
	fmt.Fprintf(w, "Ao1000\t%s\n", seconds(stats.Ao1000))
	fmt.Fprintf(w, "Sub-10\t%.1f%%\n", stats.Sub10)
	fmt.Fprintf(w, "Sub-15\t%.1f%%\n", stats.Sub15)
	fmt.Fprintf(w, "Sub-20\t%.1f%%\n", stats.Sub20)
	_ = w.Flush()
}
