package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finance-tracker/wallet-ledger/internal/application/usecase/wallet"
	"github.com/finance-tracker/wallet-ledger/internal/integration/persistence"
)

func cascadeCmd() *cobra.Command {
	var batchSize int

	cmd := &cobra.Command{
		Use:   "cascade <wallet-id>",
		Short: "Remove the transactions of a deleted wallet",
		Long: `Wallet deletion removes the wallet's transactions in the background. If the
server stopped before the cascade finished, run this command to delete the
transactions that still reference the wallet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			walletID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid wallet ID: %w", err)
			}

			l, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			if batchSize <= 0 {
				batchSize = l.cfg.Ledger.CascadeBatchSize
			}

			gormDB := l.database.DB()
			deleteWallet := wallet.NewDeleteWalletUseCase(
				persistence.NewWalletRepository(gormDB),
				persistence.NewTransactionRepository(gormDB),
				batchSize,
			)

			deleted, err := deleteWallet.Cascade(cmd.Context(), walletID)
			if err != nil {
				return fmt.Errorf("cascade stopped after %d transaction(s): %w", deleted, err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("Deleted %d transaction(s)", deleted)))
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "transactions per batch (default: ledger.cascade_batch_size)")

	return cmd
}
