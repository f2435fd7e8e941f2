package reputation

import (
	"context"
	"time"
)

// PollPolicy is a fixed retry budget for asynchronous analyses. Attempt
// counts and intervals are not caller-configurable at request time; the URL
// and file flows simply carry different policies.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration

	// IsTerminal reports whether a provider status ends the poll loop.
	IsTerminal func(status string) bool
}

// Run invokes fn up to MaxAttempts times, sleeping Interval before each
// attempt, and stops at the first terminal status. It returns true when a
// terminal status was observed and false when the budget ran out. An error
// from fn aborts the loop immediately.
//
// The sleep is a plain blocking sleep on purpose: once a poll loop starts it
// runs to completion or exhaustion, even if the requesting caller has gone
// away.
func (p PollPolicy) Run(ctx context.Context, fn func(ctx context.Context) (status string, err error)) (bool, error) {
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		time.Sleep(p.Interval)

		status, err := fn(ctx)
		if err != nil {
			return false, err
		}
		if p.IsTerminal != nil && p.IsTerminal(status) {
			return true, nil
		}
	}
	return false, nil
}

// statusCompleted is the provider's terminal analysis status.
func statusCompleted(status string) bool {
	return status == "completed"
}
