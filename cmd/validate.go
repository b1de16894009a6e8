package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/example/dtbook/internal/booking"
	"github.com/example/dtbook/internal/config"
	"github.com/example/dtbook/internal/logging"
	"github.com/example/dtbook/internal/rowstore/excel"
	"github.com/spf13/cobra"
)

// newValidateCmd checks every row of the Excel table without touching
// the portal or writing anything back, so an operator can vet the sheet
// before starting the loop.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate all rows in the Excel table and report problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cfg.Store != "excel" {
				return fmt.Errorf("validate only supports the excel store")
			}

			log, err := logging.New(cfg.LogLevel, "")
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			store := excel.New(cfg.ExcelPath, log)
			rows, err := store.LoadRows(context.Background())
			if err != nil {
				return err
			}

			bad := 0
			for _, row := range rows {
				if _, errs := booking.Validate(row); len(errs) > 0 {
					bad++
					for _, fe := range errs {
						fmt.Fprintf(os.Stderr, "row %d (%s): %s\n", row.Index, row.Identity, fe.Error())
					}
				}
			}
			if bad > 0 {
				return fmt.Errorf("%d of %d rows invalid", bad, len(rows))
			}
			fmt.Printf("all %d rows valid\n", len(rows))
			return nil
		},
	}
}
