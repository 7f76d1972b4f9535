package main

import (
	"os"

	"wa-bulk-sender/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadConfig()
	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sender",
		Short: "Send personalised WhatsApp messages through WhatsApp Web",
		Long: `sender drives a real Chrome window logged into WhatsApp Web and delivers one
templated message per contact. Contacts come from a CSV file (Name, Phone,
Message) or from the contact database filled by import_contacts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, defaultDeps(), os.Stdin, os.Stdout)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.Contacts.CSVFile, "csv", cfg.Contacts.CSVFile, "contacts CSV file")
	f.Var(newRuneValue(&cfg.Contacts.Delimiter), "delimiter", `CSV field delimiter ("\t" for tab)`)
	f.StringVar(&cfg.Contacts.Source, "source", cfg.Contacts.Source, "contact source: csv or db")
	f.StringVar(&cfg.Contacts.Tag, "tag", cfg.Contacts.Tag, "only send to stored contacts with this tag (db source)")
	f.StringVar(&cfg.Database.Driver, "db-driver", cfg.Database.Driver, "contact database driver: sqlite or postgres")
	f.StringVar(&cfg.Database.Path, "db-path", cfg.Database.Path, "sqlite database file")
	f.StringVar(&cfg.Browser.SessionDir, "session-dir", cfg.Browser.SessionDir, "Chrome profile directory holding the WhatsApp login")
	f.StringVar(&cfg.Browser.ChromePath, "chrome-path", cfg.Browser.ChromePath, "Chrome executable (default: autodetect)")
	f.BoolVar(&cfg.Browser.Headless, "headless", cfg.Browser.Headless, "run Chrome headless (QR login needs a window)")
	f.StringVar(&cfg.Browser.LocatorsFile, "locators", cfg.Browser.LocatorsFile, "YAML file overriding UI locators")
	f.IntVar(&cfg.Dispatch.RetryLimit, "retries", cfg.Dispatch.RetryLimit, "attempts per contact")
	f.IntVar(&cfg.Batch.MaxPerMinute, "max-per-minute", cfg.Batch.MaxPerMinute, "cap on sends per minute (0 = none)")
	f.BoolVar(&cfg.Batch.DryRun, "dry-run", cfg.Batch.DryRun, "render every message without opening the browser")
	f.StringVar(&cfg.Server.StatusAddr, "status-addr", cfg.Server.StatusAddr, "serve read-only progress on this address, e.g. :8080")
	f.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "trace, debug, info, warn or error")
	f.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "console or json")
	f.BoolVar(&cfg.Notify.Bell, "bell", cfg.Notify.Bell, "ring the terminal bell after each contact")

	return cmd
}
