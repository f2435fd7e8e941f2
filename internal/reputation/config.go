package reputation

import "time"

// Config controls the provider endpoint and the two poll budgets.
type Config struct {
	// BaseURL is the provider API root, e.g. "https://www.virustotal.com/api/v3".
	BaseURL string

	// APIKey is sent as the x-apikey header on every request.
	APIKey string

	// URLPoll bounds the URL analysis fallback: 5 attempts x 2s (10s ceiling).
	URLPoll PollPolicy

	// FilePoll bounds file analysis: 30 attempts x 3s (90s ceiling).
	FilePoll PollPolicy
}

// DefaultConfig returns the production poll budgets against the public
// provider endpoint.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://www.virustotal.com/api/v3",
		URLPoll: PollPolicy{
			MaxAttempts: 5,
			Interval:    2 * time.Second,
			IsTerminal:  statusCompleted,
		},
		FilePoll: PollPolicy{
			MaxAttempts: 30,
			Interval:    3 * time.Second,
			IsTerminal:  statusCompleted,
		},
	}
}
