package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/audit"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence"
)

func driftCmd() *cobra.Command {
	var (
		userFlag string
		fix      bool
	)

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare stored wallet balances with their transaction history",
		Long: `Recompute every wallet's amount, total income and total expenses from its
transactions and report the wallets whose stored values differ.

With --fix the stored values are replaced by the recomputed ones.`,
		Example: `  # Audit every wallet
  ledgerctl drift

  # Audit and repair the wallets of one user
  ledgerctl drift --user 6f1c... --fix`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := audit.DetectDriftInput{Fix: fix}
			if userFlag != "" {
				userID, err := uuid.Parse(userFlag)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				input.UserID = &userID
			}

			l, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			gormDB := l.database.DB()
			detect := audit.NewDetectDriftUseCase(
				persistence.NewWalletRepository(gormDB),
				persistence.NewTransactionRepository(gormDB),
				l.locker,
			)

			output, err := detect.Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			renderDrift(cmd.OutOrStdout(), output)
			if len(output.Drifts) > 0 && !fix {
				return fmt.Errorf("%d wallet(s) drifted", len(output.Drifts))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&userFlag, "user", "", "only audit the wallets of this user ID")
	cmd.Flags().BoolVar(&fix, "fix", false, "rewrite drifted balances from the transaction history")

	return cmd
}

func renderDrift(out io.Writer, output *audit.DetectDriftOutput) {
	if len(output.Drifts) == 0 {
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("Checked %d wallet(s), no drift", output.Checked)))
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("WALLET"),
		headerStyle.Render("NAME"),
		headerStyle.Render("STORED"),
		headerStyle.Render("EXPECTED"),
		headerStyle.Render("STATUS"),
	)
	for _, d := range output.Drifts {
		status := errorStyle.Render("drift")
		if d.Fixed {
			status = successStyle.Render("fixed")
		}
		fmt.Fprintf(w, "%s\t%s\t%s/%s/%s\t%s/%s/%s\t%s\n",
			d.WalletID, d.Name,
			d.Stored.Amount.StringFixed(2), d.Stored.TotalIncome.StringFixed(2), d.Stored.TotalExpenses.StringFixed(2),
			d.Expected.Amount.StringFixed(2), d.Expected.TotalIncome.StringFixed(2), d.Expected.TotalExpenses.StringFixed(2),
			status,
		)
	}
	_ = w.Flush()

	fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("Checked %d wallet(s), %d drifted", output.Checked, len(output.Drifts))))
}
