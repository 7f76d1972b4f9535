package dispatch

import (
	"fmt"

	"wa-bulk-sender/internal/contacts"
)

// Outcome is one of Sent, TransientFailure or Exhausted.
type Outcome interface {
	isOutcome()
	String() string
}

type Sent struct{}

// TransientFailure is a failed attempt that may still be retried.
type TransientFailure struct {
	Cause error
}

// Exhausted is the final outcome once every attempt failed.
type Exhausted struct {
	Attempts int
	Last     error
}

func (Sent) isOutcome()             {}
func (TransientFailure) isOutcome() {}
func (Exhausted) isOutcome()        {}

func (Sent) String() string { return "sent" }

func (f TransientFailure) String() string { return fmt.Sprintf("transient failure: %v", f.Cause) }

func (e Exhausted) String() string {
	return fmt.Sprintf("exhausted after %d attempts: %v", e.Attempts, e.Last)
}

// AttemptResult describes a single try at delivering to one contact.
type AttemptResult struct {
	Contact contacts.Contact
	Attempt int
	Outcome Outcome
}

type Request struct {
	Contact contacts.Contact
	// Reply sends Contact.Message as-is: no template rendering and no
	// inter-message delay.
	Reply bool
}

type Result struct {
	Contact  contacts.Contact
	Outcome  Outcome
	Attempts int
	Err      error
}

func (r Result) OK() bool {
	_, ok := r.Outcome.(Sent)
	return ok
}
