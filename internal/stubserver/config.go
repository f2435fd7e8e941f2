package stubserver

type Config struct {
	Port int

	// CompleteAfter is how many status polls an analysis stays "queued"
	// before reporting "completed". 0 completes on the first poll.
	CompleteAfter int
}

func DefaultConfig() Config {
	return Config{
		Port:          9099,
		CompleteAfter: 2,
	}
}
