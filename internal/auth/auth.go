package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wa-bulk-sender/internal/browser"
	"wa-bulk-sender/internal/config"

	"github.com/rs/zerolog"
)

var ErrNotAuthenticated = errors.New("whatsapp web session is not authenticated")

type State int

const (
	Unknown State = iota
	Authenticated
	AwaitingCredential
	Failed
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case AwaitingCredential:
		return "awaiting_credential"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Prober reports whether the logged-in UI is showing. A plain timeout is
// (false, nil); anything else is an error.
type Prober interface {
	Probe(ctx context.Context, timeout time.Duration) (bool, error)
}

// Prompter performs the manual credential hand-off (the QR scan) and
// returns once the operator says it is done.
type Prompter interface {
	AwaitCredential(ctx context.Context) error
}

type landmarkWaiter interface {
	WaitPresent(ctx context.Context, loc browser.Locator, timeout time.Duration) error
}

// LandmarkProber treats presence of the chat list as "logged in".
type LandmarkProber struct {
	Browser  landmarkWaiter
	Landmark browser.Locator
}

func (p LandmarkProber) Probe(ctx context.Context, timeout time.Duration) (bool, error) {
	err := p.Browser.WaitPresent(ctx, p.Landmark, timeout)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return false, nil
	default:
		return false, err
	}
}

type Authenticator struct {
	prober   Prober
	prompter Prompter
	cfg      config.AuthConfig
	log      zerolog.Logger
	state    State
}

func New(prober Prober, prompter Prompter, cfg config.AuthConfig, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		prober:   prober,
		prompter: prompter,
		cfg:      cfg,
		log:      log.With().Str("comp", "auth").Logger(),
	}
}

func (a *Authenticator) State() State { return a.state }

// Authenticate drives Unknown to Authenticated or Failed. The credential
// hand-off is offered exactly once.
func (a *Authenticator) Authenticate(ctx context.Context) (State, error) {
	a.state = Unknown

	ok, err := a.prober.Probe(ctx, a.cfg.LoginTimeout)
	if err != nil {
		return a.fail(fmt.Errorf("login probe: %w", err))
	}
	if ok {
		return a.succeed()
	}

	a.transition(AwaitingCredential)
	a.log.Info().Msg("No active session, waiting for QR scan")
	if err := a.prompter.AwaitCredential(ctx); err != nil {
		return a.fail(fmt.Errorf("credential hand-off: %w", err))
	}

	ok, err = a.prober.Probe(ctx, a.cfg.CredentialTimeout)
	if err != nil {
		return a.fail(fmt.Errorf("login probe after scan: %w", err))
	}
	if !ok {
		return a.fail(ErrNotAuthenticated)
	}
	return a.succeed()
}

func (a *Authenticator) succeed() (State, error) {
	a.transition(Authenticated)
	a.log.Info().Msg("WhatsApp Web logged in")
	return a.state, nil
}

func (a *Authenticator) fail(err error) (State, error) {
	a.transition(Failed)
	if !errors.Is(err, ErrNotAuthenticated) {
		err = fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return a.state, err
}

func (a *Authenticator) transition(to State) {
	a.log.Debug().Stringer("from", a.state).Stringer("to", to).Msg("auth state")
	a.state = to
}
