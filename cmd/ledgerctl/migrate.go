package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the wallet and transaction tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := openLedger(cmd.Context())
			if err != nil {
				return err
			}
			defer l.Close()

			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("Migrations applied"))
			return nil
		},
	}
}
