package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"store-register/internal/charges"
	"store-register/internal/models"
)

var (
	listDate string
	listAll  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries for a day, or every entry with --all",
	Run:   runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "day to list (YYYY-MM-DD, default today)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "list every entry, newest first")
}

func runList(cmd *cobra.Command, args []string) {
	_, store := openStore()
	ctx := context.Background()

	var (
		entries []models.Entry
		err     error
	)
	if listAll {
		entries, err = store.ListAll(ctx)
	} else {
		date, derr := resolveDate(listDate, store.Today())
		exitOnError(derr, "invalid --date")
		entries, err = store.ListByDate(ctx, date)
	}
	exitOnError(err, "failed to list entries")

	exitOnError(printEntries(os.Stdout, entries), "failed to print entries")
}

func printEntries(w io.Writer, entries []models.Entry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tTYPE\tCUSTOMER\tMODE\tB AMT\tB CHG\tK AMT\tK CHG\tCHARGES\tREMARKS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.EntryDate, e.EntryTime, e.CustomerType, e.CustomerName, e.PaymentMode,
			charges.Round2(e.BAmount), charges.Round2(e.BCharges),
			charges.Round2(e.KAmount), charges.Round2(e.KCharges),
			charges.Round2(e.GrandCharges), e.Remarks)
	}
	return tw.Flush()
}
