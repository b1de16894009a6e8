package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/dtbook/internal/config"
	"github.com/example/dtbook/internal/db"
	"github.com/example/dtbook/internal/engine"
	"github.com/example/dtbook/internal/logging"
	"github.com/example/dtbook/internal/migrate"
	"github.com/example/dtbook/internal/notify"
	"github.com/example/dtbook/internal/portal"
	"github.com/example/dtbook/internal/rowstore"
	"github.com/example/dtbook/internal/rowstore/excel"
	"github.com/example/dtbook/internal/rowstore/postgres"
	"github.com/example/dtbook/internal/secrets"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the reconciliation loop against the booking portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			log, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store, closeStore, err := openStore(ctx, cfg, migrateUp, log)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := store.Init(ctx); err != nil {
				return fmt.Errorf("init row table: %w", err)
			}

			exec := portal.New(portal.Config{
				URL:         cfg.PortalURL,
				Headless:    cfg.Headless,
				Bin:         cfg.ChromeBin,
				StepTimeout: cfg.StepTimeout,
			}, log.Named("portal"))

			var notifier engine.Notifier
			if cfg.SMTPHost != "" && cfg.EmailTo != "" {
				notifier = notify.New(notify.Config{
					Host:     cfg.SMTPHost,
					Port:     cfg.SMTPPort,
					Username: cfg.SMTPUsername,
					Password: cfg.SMTPPassword,
					From:     cfg.EmailFrom,
					To:       cfg.EmailTo,
				})
			}

			loop := &engine.Loop{
				Engine:   engine.New(store, exec, notifier, log.Named("engine")),
				Interval: cfg.PollInterval,
				Log:      log,
			}

			log.Info("starting reconciliation loop",
				zap.String("store", cfg.Store),
				zap.Duration("interval", cfg.PollInterval))

			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup (postgres store only)")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}

// openStore builds the configured row table backend. The returned close
// function is always safe to call.
func openStore(ctx context.Context, cfg config.Config, migrateUp bool, log *zap.Logger) (rowstore.Store, func(), error) {
	switch cfg.Store {
	case "postgres":
		d, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		if err := d.Ping(ctx); err != nil {
			d.Close()
			return nil, func() {}, fmt.Errorf("db ping: %w", err)
		}
		if migrateUp {
			if err := migrate.Up(ctx, d); err != nil {
				d.Close()
				return nil, func() {}, err
			}
		}
		box, err := secrets.New(cfg.SecretsKey)
		if err != nil {
			d.Close()
			return nil, func() {}, err
		}
		return postgres.New(d, box), d.Close, nil
	default:
		return excel.New(cfg.ExcelPath, log.Named("excel")), func() {}, nil
	}
}
