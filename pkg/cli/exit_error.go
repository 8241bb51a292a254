package cli

import "fmt"

// Exit codes of the speclink command.
const (
	ExitOK       = 0
	ExitFailure  = 1 // resolution errors, unreadable input, bad usage
	ExitInternal = 2 // a pass found its input in a state it cannot handle
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
	// Reported is set when the diagnostics were already printed.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
