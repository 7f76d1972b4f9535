package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"wa-bulk-sender/internal/browser"
	"wa-bulk-sender/internal/config"
	"wa-bulk-sender/internal/contacts"
	"wa-bulk-sender/internal/message"
	"wa-bulk-sender/internal/notify"

	"github.com/rs/zerolog"
)

// Browser is the slice of browser.Session the send protocol needs.
type Browser interface {
	Locators() browser.Locators
	Anchor() browser.TabID
	Active() browser.TabID
	OpenTab(ctx context.Context, url string) (browser.TabID, error)
	Tabs(ctx context.Context) ([]browser.TabID, error)
	SwitchTo(ctx context.Context, id browser.TabID) error
	CloseTab(ctx context.Context, id browser.TabID) error
	WaitPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) error
	PressEnter(ctx context.Context, loc browser.Locator) error
	Click(ctx context.Context, loc browser.Locator, timeout time.Duration) error
}

type Dispatcher struct {
	br       Browser
	cfg      config.DispatchConfig
	baseURL  string
	notifier notify.Notifier
	log      zerolog.Logger

	onAttempt func(AttemptResult)
	now       func() time.Time
	sleep     func(context.Context, time.Duration)
}

func New(br Browser, cfg config.DispatchConfig, baseURL string, n notify.Notifier, log zerolog.Logger) *Dispatcher {
	if cfg.RetryLimit < 1 {
		cfg.RetryLimit = 1
	}
	if n == nil {
		n = notify.Nop
	}
	return &Dispatcher{
		br:       br,
		cfg:      cfg,
		baseURL:  baseURL,
		notifier: n,
		log:      log.With().Str("comp", "dispatch").Logger(),
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// OnAttempt registers a hook called after every attempt, successful or not.
func (d *Dispatcher) OnAttempt(fn func(AttemptResult)) { d.onAttempt = fn }

// Send delivers one message, retrying up to RetryLimit times. It never
// returns with a contact tab in focus: the anchor tab is active afterwards
// whatever the outcome.
func (d *Dispatcher) Send(ctx context.Context, req Request) Result {
	log := d.log.With().Str("name", req.Contact.Name).Str("phone", req.Contact.Phone).Logger()

	var last error
	for n := 1; n <= d.cfg.RetryLimit; n++ {
		tab, err := d.attempt(ctx, req)
		if err == nil {
			d.emit(req.Contact, n, Sent{})
			log.Info().Int("attempt", n).Msg("Message sent")
			d.notifier.Notify(notify.Success)
			d.finish(ctx, tab, req.Reply)
			return Result{Contact: req.Contact, Outcome: Sent{}, Attempts: n}
		}

		last = err
		d.emit(req.Contact, n, TransientFailure{Cause: err})
		d.cleanup(ctx)
		log.Warn().Int("attempt", n).Int("of", d.cfg.RetryLimit).Err(err).Msg("Send attempt failed")
		// No backoff after the final attempt: the batch moves on at once.
		if n < d.cfg.RetryLimit {
			d.sleep(ctx, d.cfg.RetryBackoff)
		}
	}

	log.Error().Int("attempts", d.cfg.RetryLimit).Err(last).Msg("Giving up on contact")
	d.notifier.Notify(notify.Failure)
	out := Exhausted{Attempts: d.cfg.RetryLimit, Last: last}
	return Result{Contact: req.Contact, Outcome: out, Attempts: d.cfg.RetryLimit, Err: last}
}

// attempt runs the send protocol up to and including the submit. The
// returned tab id is valid whenever a tab was opened, even on error.
func (d *Dispatcher) attempt(ctx context.Context, req Request) (browser.TabID, error) {
	locs := d.br.Locators()
	c := req.Contact

	text := c.Message
	if !req.Reply {
		text = message.RenderFor(c.Message, c.Name, c.Phone, d.now())
	}

	tab, err := d.br.OpenTab(ctx, DeepLink(d.baseURL, c.Phone, text))
	if err != nil {
		return tab, err
	}
	if err := d.br.WaitPresent(ctx, locs.MessageInput, d.cfg.InputTimeout); err != nil {
		return tab, err
	}

	d.sleep(ctx, jitter(d.cfg.MinTypingPause, d.cfg.MaxTypingPause))

	if err := d.br.PressEnter(ctx, locs.MessageInput); err != nil {
		d.log.Debug().Err(err).Msg("Enter failed, clicking send button")
		if cerr := d.br.Click(ctx, locs.SendButton, d.cfg.InputTimeout); cerr != nil {
			return tab, fmt.Errorf("submit: %w", errors.Join(err, cerr))
		}
	}
	return tab, nil
}

// finish runs after a successful submit. Nothing here may fail the send.
func (d *Dispatcher) finish(ctx context.Context, tab browser.TabID, reply bool) {
	d.sleep(ctx, d.cfg.SettleDelay)

	if tab != "" && tab != d.br.Anchor() {
		if err := d.br.CloseTab(ctx, tab); err != nil {
			d.log.Debug().Err(err).Str("tab", string(tab)).Msg("Close contact tab")
		}
	}
	d.cleanup(ctx)

	if !reply {
		d.sleep(ctx, jitter(d.cfg.MinSendDelay, d.cfg.MaxSendDelay))
	}
}

// cleanup closes every tab except the anchor and focuses the anchor.
// Errors are logged and swallowed.
func (d *Dispatcher) cleanup(ctx context.Context) {
	anchor := d.br.Anchor()

	tabs, err := d.br.Tabs(ctx)
	if err != nil {
		d.log.Debug().Err(err).Msg("List tabs")
		tabs = []browser.TabID{d.br.Active()}
	}
	for _, id := range tabs {
		if id == anchor {
			continue
		}
		if err := d.br.CloseTab(ctx, id); err != nil {
			d.log.Debug().Err(err).Str("tab", string(id)).Msg("Close tab")
		}
	}
	if err := d.br.SwitchTo(ctx, anchor); err != nil {
		d.log.Debug().Err(err).Msg("Focus anchor tab")
	}
}

func (d *Dispatcher) emit(c contacts.Contact, n int, o Outcome) {
	if d.onAttempt != nil {
		d.onAttempt(AttemptResult{Contact: c, Attempt: n, Outcome: o})
	}
}

// jitter returns a uniformly random duration in [lo, hi].
func jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
