package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"store-register/internal/ledger"
	"store-register/internal/models"
)

var summaryDate string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show entry count and totals for a day",
	Run:   runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryDate, "date", "", "day to summarise (YYYY-MM-DD, default today)")
}

func runSummary(cmd *cobra.Command, args []string) {
	_, store := openStore()
	date, err := resolveDate(summaryDate, store.Today())
	exitOnError(err, "invalid --date")

	sum, err := store.Summary(context.Background(), date)
	exitOnError(err, "failed to summarise")
	printSummary(os.Stdout, sum)
}

func printSummary(w io.Writer, sum ledger.Summary) {
	fmt.Fprintf(w, "\n=== Summary %s ===\n", sum.Date)
	fmt.Fprintf(w, "Entries:       %d\n", sum.Count)
	fmt.Fprintf(w, "Total B:       %s\n", sum.TotalB.StringFixed(2))
	fmt.Fprintf(w, "Total K:       %s\n", sum.TotalK.StringFixed(2))
	fmt.Fprintf(w, "Total charges: %s\n\n", sum.TotalCharges.StringFixed(2))
}

// resolveDate validates a YYYY-MM-DD flag value, falling back to today.
func resolveDate(flag, today string) (string, error) {
	if flag == "" {
		return today, nil
	}
	if _, err := time.Parse(models.DateLayout, flag); err != nil {
		return "", fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return flag, nil
}
