package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"wa-bulk-sender/internal/browser"
	"wa-bulk-sender/internal/config"

	"github.com/rs/zerolog"
)

type probeResult struct {
	ok  bool
	err error
}

type fakeProber struct {
	results  []probeResult
	timeouts []time.Duration
}

func (f *fakeProber) Probe(_ context.Context, timeout time.Duration) (bool, error) {
	f.timeouts = append(f.timeouts, timeout)
	if len(f.results) == 0 {
		return false, nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r.ok, r.err
}

type fakePrompter struct {
	calls int
	err   error
}

func (f *fakePrompter) AwaitCredential(context.Context) error {
	f.calls++
	return f.err
}

var testCfg = config.AuthConfig{LoginTimeout: 7 * time.Second, CredentialTimeout: 30 * time.Second}

func TestAuthenticate(t *testing.T) {
	probeErr := errors.New("devtools gone")

	tests := []struct {
		name       string
		results    []probeResult
		promptErr  error
		wantState  State
		wantErr    bool
		wantPrompt int
		wantProbes []time.Duration
	}{
		{
			name:       "already logged in",
			results:    []probeResult{{ok: true}},
			wantState:  Authenticated,
			wantProbes: []time.Duration{7 * time.Second},
		},
		{
			name:       "qr scan succeeds",
			results:    []probeResult{{ok: false}, {ok: true}},
			wantState:  Authenticated,
			wantPrompt: 1,
			wantProbes: []time.Duration{7 * time.Second, 30 * time.Second},
		},
		{
			name:       "both probes fail",
			results:    []probeResult{{ok: false}, {ok: false}},
			wantState:  Failed,
			wantErr:    true,
			wantPrompt: 1,
			wantProbes: []time.Duration{7 * time.Second, 30 * time.Second},
		},
		{
			name:       "probe error is fatal",
			results:    []probeResult{{err: probeErr}},
			wantState:  Failed,
			wantErr:    true,
			wantProbes: []time.Duration{7 * time.Second},
		},
		{
			name:       "prompt aborted",
			results:    []probeResult{{ok: false}},
			promptErr:  context.Canceled,
			wantState:  Failed,
			wantErr:    true,
			wantPrompt: 1,
			wantProbes: []time.Duration{7 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProber{results: tt.results}
			pr := &fakePrompter{err: tt.promptErr}
			a := New(p, pr, testCfg, zerolog.Nop())

			state, err := a.Authenticate(context.Background())
			if state != tt.wantState || a.State() != tt.wantState {
				t.Fatalf("state = %v, want %v", state, tt.wantState)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNotAuthenticated) {
				t.Fatalf("error %v does not wrap ErrNotAuthenticated", err)
			}
			if pr.calls != tt.wantPrompt {
				t.Fatalf("prompted %d times, want %d", pr.calls, tt.wantPrompt)
			}
			if fmt.Sprint(p.timeouts) != fmt.Sprint(tt.wantProbes) {
				t.Fatalf("probe timeouts = %v, want %v", p.timeouts, tt.wantProbes)
			}
		})
	}
}

type fakeWaiter struct{ err error }

func (f fakeWaiter) WaitPresent(context.Context, browser.Locator, time.Duration) error { return f.err }

func TestLandmarkProber(t *testing.T) {
	landmark := browser.DefaultLocators().ChatList

	ok, err := LandmarkProber{Browser: fakeWaiter{}, Landmark: landmark}.Probe(context.Background(), time.Second)
	if !ok || err != nil {
		t.Fatalf("present landmark: ok=%v err=%v", ok, err)
	}

	timeout := fmt.Errorf("wait for chat_list: %w", context.DeadlineExceeded)
	ok, err = LandmarkProber{Browser: fakeWaiter{err: timeout}, Landmark: landmark}.Probe(context.Background(), time.Second)
	if ok || err != nil {
		t.Fatalf("timeout should be (false, nil), got ok=%v err=%v", ok, err)
	}

	boom := errors.New("target crashed")
	ok, err = LandmarkProber{Browser: fakeWaiter{err: boom}, Landmark: landmark}.Probe(context.Background(), time.Second)
	if ok || !errors.Is(err, boom) {
		t.Fatalf("other errors propagate, got ok=%v err=%v", ok, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LandmarkProber{Browser: fakeWaiter{err: timeout}, Landmark: landmark}.Probe(ctx, time.Second)
	if err == nil {
		t.Fatalf("a cancelled caller must not look like a plain timeout")
	}
}

func TestTerminalPrompter(t *testing.T) {
	var out bytes.Buffer
	p := TerminalPrompter{In: strings.NewReader("\n"), Out: &out}
	if err := p.AwaitCredential(context.Background()); err != nil {
		t.Fatalf("AwaitCredential: %v", err)
	}
	if !strings.Contains(out.String(), "QR code") {
		t.Fatalf("prompt not shown: %q", out.String())
	}

	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p = TerminalPrompter{In: pr, Out: io.Discard}
	if err := p.AwaitCredential(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled prompt returned %v", err)
	}
}
