package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/rs/zerolog"
)

var (
	ErrNoSuchTab     = errors.New("no such tab")
	ErrAnchorTab     = errors.New("the anchor tab cannot be closed")
	ErrSessionClosed = errors.New("browser session closed")
)

const keyTimeout = 10 * time.Second

// TabID is the CDP target id of a page.
type TabID string

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Session owns one Chrome process launched against a persistent profile.
// The first page is the anchor tab; contact tabs are opened beside it and
// element operations always act on the active tab.
type Session struct {
	log  zerolog.Logger
	opts Options

	allocCancel   context.CancelFunc
	browserCancel context.CancelFunc
	anchorCtx     context.Context
	anchor        TabID

	mu     sync.Mutex
	tabs   map[TabID]*tab
	active TabID
	closed bool

	closeOnce sync.Once
}

// Open launches Chrome. The browser is not bound to any caller context; it
// lives until Close.
func Open(opts Options, log zerolog.Logger) (*Session, error) {
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = 60 * time.Second
	}
	if opts.Locators == (Locators{}) {
		opts.Locators = DefaultLocators()
	}
	log = log.With().Str("comp", "browser").Logger()

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, v ...any) { log.Trace().Msgf(format, v...) }),
		chromedp.WithDebugf(func(format string, v ...any) { log.Trace().Msgf(format, v...) }),
		chromedp.WithErrorf(func(format string, v ...any) { log.Debug().Msgf(format, v...) }),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	anchor := TabID(chromedp.FromContext(browserCtx).Target.TargetID)
	log.Info().Str("profile", opts.ProfileDir).Bool("headless", opts.Headless).Msg("Chrome started")

	return &Session{
		log:           log,
		opts:          opts,
		allocCancel:   allocCancel,
		browserCancel: browserCancel,
		anchorCtx:     browserCtx,
		anchor:        anchor,
		tabs:          map[TabID]*tab{},
		active:        anchor,
	}, nil
}

func (s *Session) Locators() Locators { return s.opts.Locators }

func (s *Session) Anchor() TabID { return s.anchor }

func (s *Session) Active() TabID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Navigate loads url in the anchor tab.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, s.anchorCtx, s.opts.PageLoadTimeout, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// OpenTab opens url in a new tab and makes it active. When navigation fails
// the tab stays open and active; its id is still returned so it can be closed.
func (s *Session) OpenTab(ctx context.Context, url string) (TabID, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	s.mu.Unlock()

	tabCtx, cancel := chromedp.NewContext(s.anchorCtx)
	// The first Run allocates the target; it must not carry a deadline or the
	// tab would be torn down with it.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return "", fmt.Errorf("open tab: %w", err)
	}
	id := TabID(chromedp.FromContext(tabCtx).Target.TargetID)

	s.mu.Lock()
	s.tabs[id] = &tab{ctx: tabCtx, cancel: cancel}
	s.active = id
	s.mu.Unlock()

	if err := s.run(ctx, tabCtx, s.opts.PageLoadTimeout, chromedp.Navigate(url)); err != nil {
		return id, fmt.Errorf("load tab: %w", err)
	}
	return id, nil
}

// Tabs lists every open page target, including ones the page opened itself.
func (s *Session) Tabs(ctx context.Context) ([]TabID, error) {
	infos, err := chromedp.Targets(s.anchorCtx)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	ids := make([]TabID, 0, len(infos))
	for _, info := range infos {
		if info.Type == "page" {
			ids = append(ids, TabID(info.TargetID))
		}
	}
	return ids, nil
}

func (s *Session) SwitchTo(ctx context.Context, id TabID) error {
	tctx, err := s.tabContext(id)
	if err != nil {
		return err
	}
	if err := s.run(ctx, tctx, keyTimeout, page.BringToFront()); err != nil {
		return fmt.Errorf("switch to %s: %w", id, err)
	}
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()
	return nil
}

// CloseTab closes a contact tab. If it was active, the anchor becomes active
// again in bookkeeping only; callers still SwitchTo the anchor to focus it.
func (s *Session) CloseTab(ctx context.Context, id TabID) error {
	if id == s.anchor {
		return ErrAnchorTab
	}

	s.mu.Lock()
	t, ok := s.tabs[id]
	delete(s.tabs, id)
	if s.active == id {
		s.active = s.anchor
	}
	s.mu.Unlock()

	if ok {
		t.cancel()
		return nil
	}
	// Not ours: a popup or a tab left over from an earlier attempt.
	closeTarget := chromedp.ActionFunc(func(ctx context.Context) error {
		c := chromedp.FromContext(ctx)
		return target.CloseTarget(target.ID(id)).Do(cdp.WithExecutor(ctx, c.Browser))
	})
	if err := s.run(ctx, s.anchorCtx, keyTimeout, closeTarget); err != nil {
		return fmt.Errorf("close %s: %w", id, err)
	}
	return nil
}

// WaitPresent blocks until loc exists in the active tab's DOM or timeout passes.
func (s *Session) WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) error {
	tctx, err := s.activeContext()
	if err != nil {
		return err
	}
	if err := s.run(ctx, tctx, timeout, chromedp.WaitReady(loc.Value, loc.queryOption())); err != nil {
		return fmt.Errorf("wait for %s: %w", loc, err)
	}
	return nil
}

func (s *Session) PressEnter(ctx context.Context, loc Locator) error {
	tctx, err := s.activeContext()
	if err != nil {
		return err
	}
	if err := s.run(ctx, tctx, keyTimeout, chromedp.SendKeys(loc.Value, kb.Enter, loc.queryOption())); err != nil {
		return fmt.Errorf("press enter on %s: %w", loc, err)
	}
	return nil
}

// Click waits up to timeout for loc to be visible, then clicks it.
func (s *Session) Click(ctx context.Context, loc Locator, timeout time.Duration) error {
	tctx, err := s.activeContext()
	if err != nil {
		return err
	}
	err = s.run(ctx, tctx, timeout,
		chromedp.WaitVisible(loc.Value, loc.queryOption()),
		chromedp.Click(loc.Value, loc.queryOption(), chromedp.NodeVisible),
	)
	if err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

// Close terminates Chrome. The profile directory is left on disk. Safe to
// call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		tabs := s.tabs
		s.tabs = map[TabID]*tab{}
		s.active = s.anchor
		s.mu.Unlock()

		for _, t := range tabs {
			t.cancel()
		}
		s.browserCancel()
		s.allocCancel()
		s.log.Info().Msg("Chrome stopped")
	})
	return nil
}

func (s *Session) tabContext(id TabID) (context.Context, error) {
	if id == s.anchor {
		return s.anchorCtx, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tabs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchTab, id)
	}
	return t.ctx, nil
}

func (s *Session) activeContext() (context.Context, error) {
	return s.tabContext(s.Active())
}

// run executes actions on a tab context, bounded by timeout and abandoned
// early if the caller's ctx ends.
func (s *Session) run(ctx context.Context, tabCtx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrSessionClosed
	}

	opCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(opCtx, actions...)
}
