// Package notify is the side channel for audible or visual send outcome cues.
package notify

import (
	"io"
	"sync"
	"time"
)

type Outcome int

const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Notifier receives one call per finished send. Implementations must not block
// for long; they run on the send path.
type Notifier interface {
	Notify(Outcome)
}

type NotifierFunc func(Outcome)

func (f NotifierFunc) Notify(o Outcome) { f(o) }

// Nop discards every outcome.
var Nop Notifier = NotifierFunc(func(Outcome) {})

// Bell rings the terminal bell: once for success, twice for failure.
type Bell struct {
	mu  sync.Mutex
	out io.Writer
	gap time.Duration
}

func NewBell(out io.Writer) *Bell {
	return &Bell{out: out, gap: 150 * time.Millisecond}
}

func (b *Bell) Notify(o Outcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = io.WriteString(b.out, "\a")
	if o == Failure {
		time.Sleep(b.gap)
		_, _ = io.WriteString(b.out, "\a")
	}
}

// Multi fans an outcome out to every non-nil notifier.
func Multi(ns ...Notifier) Notifier {
	var live []Notifier
	for _, n := range ns {
		if n != nil {
			live = append(live, n)
		}
	}
	if len(live) == 0 {
		return Nop
	}
	return NotifierFunc(func(o Outcome) {
		for _, n := range live {
			n.Notify(o)
		}
	})
}
