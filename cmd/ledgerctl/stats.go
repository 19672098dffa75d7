package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/statistics"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence"
)

func statsCmd() *cobra.Command {
	var (
		userFlag string
		timezone string
	)

	cmd := &cobra.Command{
		Use:       "stats <weekly|monthly|yearly>",
		Short:     "Print the income and expense buckets of a user",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"weekly", "monthly", "yearly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := statistics.ParseWindow(args[0])
			if err != nil {
				return err
			}
			userID, err := uuid.Parse(userFlag)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			l, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			location := l.cfg.Ledger.Location()
			if timezone != "" {
				if location, err = time.LoadLocation(timezone); err != nil {
					return fmt.Errorf("invalid --tz: %w", err)
				}
			}

			fetch := statistics.NewFetchStatsUseCase(
				persistence.NewTransactionRepository(l.database.DB()),
				nil,
				location,
			)

			output, err := fetch.Execute(cmd.Context(), statistics.FetchStatsInput{
				UserID: userID,
				Window: window,
			})
			if err != nil {
				return err
			}

			renderStats(cmd.OutOrStdout(), output)
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "user ID (required)")
	cmd.Flags().StringVar(&timezone, "tz", "", "IANA time zone of the buckets (default: ledger.stats_timezone)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func renderStats(out io.Writer, output *statistics.FetchStatsOutput) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("BUCKET"),
		headerStyle.Render("INCOME"),
		headerStyle.Render("EXPENSE"),
	)
	for _, b := range output.Buckets {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Label, b.Income.StringFixed(2), b.Expense.StringFixed(2))
	}
	_ = w.Flush()

	fmt.Fprintln(out, subtleStyle.Render(fmt.Sprintf("%s window, %d transaction(s)", output.Window, len(output.Transactions))))
}
