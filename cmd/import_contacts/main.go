package main

import (
	"context"
	"os"

	"wa-bulk-sender/internal/config"
	"wa-bulk-sender/internal/contacts"
	"wa-bulk-sender/internal/database"
	"wa-bulk-sender/internal/logging"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadConfig()
	var tags []string

	cmd := &cobra.Command{
		Use:           "import_contacts [csv file]",
		Short:         "Load a contacts CSV into the contact database",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Contacts.CSVFile = args[0]
			}
			log := logging.New(cfg.Log)
			if err := importContacts(cmd.Context(), cfg, tags, log); err != nil {
				log.Error().Err(err).Msg("Import failed")
				return err
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&tags, "tag", nil, "tag to attach to every imported contact (repeatable)")
	f.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "sqlite or postgres")
	f.StringVar(&cfg.Database.Path, "db-path", cfg.Database.Path, "sqlite database file")
	f.StringVar(&cfg.Database.DSN, "db-dsn", cfg.Database.DSN, "postgres DSN")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func importContacts(ctx context.Context, cfg *config.Config, tags []string, log zerolog.Logger) error {
	list, rejected, err := contacts.LoadCSV(cfg.Contacts.CSVFile, cfg.Contacts.Delimiter)
	if err != nil {
		return err
	}
	for _, r := range rejected {
		log.Warn().Int("line", r.Line).Str("raw", r.Raw).Str("reason", r.Reason).Msg("Skipping row")
	}

	db, err := database.Open(cfg.Database, logging.GormLevel(logging.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return err
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("Connected to contact database")

	n, err := database.NewContactStore(db).Upsert(ctx, list, tags)
	if err != nil {
		return err
	}
	log.Info().Int("imported", n).Int("skipped", len(rejected)).Str("file", cfg.Contacts.CSVFile).Msg("Import completed")
	return nil
}
