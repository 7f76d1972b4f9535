package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wa-bulk-sender/internal/api"
	"wa-bulk-sender/internal/auth"
	"wa-bulk-sender/internal/batch"
	"wa-bulk-sender/internal/browser"
	"wa-bulk-sender/internal/config"
	"wa-bulk-sender/internal/connectivity"
	"wa-bulk-sender/internal/contacts"
	"wa-bulk-sender/internal/database"
	"wa-bulk-sender/internal/dispatch"
	"wa-bulk-sender/internal/logging"
	"wa-bulk-sender/internal/message"
	"wa-bulk-sender/internal/notify"
	"wa-bulk-sender/internal/report"
	"wa-bulk-sender/internal/ws"

	"github.com/rs/zerolog"
)

var errOffline = errors.New("whatsapp web is unreachable")

// session is the part of browser.Session the send flow drives.
type session interface {
	dispatch.Browser
	Navigate(ctx context.Context, url string) error
	Close() error
}

// deps are the process-level collaborators of run: the network, Chrome and
// the terminal.
type deps struct {
	reachable   func(ctx context.Context, url string, timeout time.Duration, onErr func(error)) bool
	openBrowser func(opts browser.Options, log zerolog.Logger) (session, error)
	prompter    func(in io.Reader, out io.Writer) auth.Prompter
}

func defaultDeps() deps {
	return deps{
		reachable: connectivity.Reachable,
		openBrowser: func(opts browser.Options, log zerolog.Logger) (session, error) {
			s, err := browser.Open(opts, log)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		prompter: func(in io.Reader, out io.Writer) auth.Prompter {
			return auth.TerminalPrompter{In: in, Out: out}
		},
	}
}

func run(parent context.Context, cfg *config.Config, dep deps, in io.Reader, out io.Writer) error {
	log := logging.New(cfg.Log)
	console := report.NewConsole(out)

	fail := func(msg string, err error) error {
		log.Error().Err(err).Msg(msg)
		console.Fatal(msg)
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fail("Invalid configuration", err)
	}
	locs, err := browser.LoadLocators(cfg.Browser.LocatorsFile)
	if err != nil {
		return fail("Invalid locators file", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	list, store, err := loadContacts(ctx, cfg, log)
	if err != nil {
		return fail("Could not read contacts", err)
	}
	if store != nil {
		defer store.Close()
	}

	if cfg.Batch.DryRun {
		dryRun(console, list, time.Now())
		return nil
	}

	var reporters []report.Reporter
	reporters = append(reporters, console)
	if cfg.Server.StatusAddr != "" {
		srvCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		reporters = append(reporters, startStatusServer(srvCtx, cfg.Server.StatusAddr, store, log)...)
	}

	if len(list) == 0 {
		batch.NewRunner(nil, report.Multi(reporters...), cfg.Batch, log).Run(ctx, nil)
		return nil
	}

	probeLog := func(err error) { log.Error().Err(err).Str("url", cfg.Browser.BaseURL).Msg("Connectivity probe failed") }
	if !dep.reachable(ctx, cfg.Browser.BaseURL, cfg.Probe.Timeout, probeLog) {
		if interrupted(ctx) {
			return finishInterrupted(console)
		}
		console.Fatal("No internet connection. Check your network and try again.")
		return errOffline
	}

	sess, err := dep.openBrowser(browser.Options{
		ProfileDir:      cfg.Browser.SessionDir,
		ExecPath:        cfg.Browser.ChromePath,
		Headless:        cfg.Browser.Headless,
		PageLoadTimeout: cfg.Browser.PageLoadTimeout,
		Locators:        locs,
	}, log)
	if err != nil {
		return fail("Could not start Chrome", err)
	}
	defer sess.Close()

	console.Info("Opening WhatsApp Web...")
	if err := sess.Navigate(ctx, cfg.Browser.BaseURL); err != nil {
		if interrupted(ctx) {
			return finishInterrupted(console)
		}
		return fail("Could not load WhatsApp Web", err)
	}

	authn := auth.New(
		auth.LandmarkProber{Browser: sess, Landmark: locs.ChatList},
		dep.prompter(in, out),
		cfg.Auth, log,
	)
	if _, err := authn.Authenticate(ctx); err != nil {
		if interrupted(ctx) {
			return finishInterrupted(console)
		}
		return fail("Login failed after QR scan.", err)
	}

	var n notify.Notifier = notify.Nop
	if cfg.Notify.Bell {
		n = notify.NewBell(out)
	}
	d := dispatch.New(sess, cfg.Dispatch, cfg.Browser.BaseURL, n, log)
	d.OnAttempt(func(r dispatch.AttemptResult) {
		log.Debug().Str("phone", r.Contact.Phone).Int("attempt", r.Attempt).Stringer("outcome", r.Outcome).Msg("attempt")
	})

	batch.NewRunner(d, report.Multi(reporters...), cfg.Batch, log).Run(ctx, list)
	return nil
}

func loadContacts(ctx context.Context, cfg *config.Config, log zerolog.Logger) ([]contacts.Contact, *database.ContactStore, error) {
	var (
		list     []contacts.Contact
		rejected []contacts.Rejected
		store    *database.ContactStore
		err      error
	)
	switch cfg.Contacts.Source {
	case "db":
		db, oerr := database.Open(cfg.Database, logging.GormLevel(logging.ParseLevel(cfg.Log.Level)))
		if oerr != nil {
			return nil, nil, oerr
		}
		store = database.NewContactStore(db)
		list, rejected, err = store.Recipients(ctx, cfg.Contacts.Tag)
		if err != nil {
			store.Close()
		}
	default:
		list, rejected, err = contacts.LoadCSV(cfg.Contacts.CSVFile, cfg.Contacts.Delimiter)
	}
	if err != nil {
		return nil, nil, err
	}

	for _, r := range rejected {
		log.Warn().Int("line", r.Line).Str("raw", r.Raw).Str("reason", r.Reason).Msg("Skipping contact")
	}
	log.Info().Str("source", cfg.Contacts.Source).Int("valid", len(list)).Int("skipped", len(rejected)).Msg("Contacts loaded")
	return list, store, nil
}

func startStatusServer(ctx context.Context, addr string, store *database.ContactStore, log zerolog.Logger) []report.Reporter {
	tracker := report.NewTracker()
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	routes := api.Deps{Status: tracker, Hub: hub}
	if store != nil {
		routes.Contacts = store
	}
	srvLog := log.With().Str("comp", "api").Logger()
	go func() {
		if err := api.Serve(ctx, addr, api.NewRouter(routes, srvLog), srvLog); err != nil {
			srvLog.Error().Err(err).Msg("Status server stopped")
		}
	}()
	return []report.Reporter{tracker, hub}
}

func dryRun(console *report.Console, list []contacts.Contact, now time.Time) {
	for i, c := range list {
		console.Preview(i+1, len(list), c.Name, c.Phone, message.RenderFor(c.Message, c.Name, c.Phone, now))
	}
	console.Info(fmt.Sprintf("Dry run: %d messages rendered, nothing sent.", len(list)))
}

func interrupted(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func finishInterrupted(console *report.Console) error {
	console.Info("Bulk send interrupted by user.")
	return nil
}
