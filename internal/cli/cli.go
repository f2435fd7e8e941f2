package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// CLIArgs are the command-line arguments for a server run.
// Keep this small for now; add fields as modules need them.
type CLIArgs struct {
	// Addr is the HTTP listen address; overrides the PORT environment value.
	Addr string

	// EnvFile is an optional .env file to load before reading environment.
	EnvFile string

	// StorageRoot overrides where the insights database lives; empty means
	// "use config default".
	StorageRoot string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. Use in tests by passing
// arbitrary slices. The function is deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("guardscan", flag.ContinueOnError)
	var (
		addr    = fs.String("addr", "", "HTTP listen address (overrides PORT)")
		envFile = fs.String("env", "", "Path to a .env file to load")
		storage = fs.String("storage", "", "Storage root for the insights database (empty=use default)")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		// Flag parsing errors are useful to return to caller
		return nil, err
	}

	if rest := fs.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected positional arguments: %s", strings.Join(rest, " "))
	}

	return &CLIArgs{
		Addr:        *addr,
		EnvFile:     *envFile,
		StorageRoot: *storage,
		RawArgs:     args,
	}, nil
}
