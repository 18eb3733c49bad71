package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0 // Audit completed cleanly
	ExitAuditErrors = 1 // Audit completed but some backend queries failed
	ExitError       = 2 // Configuration or runtime error
)

// AuditIncompleteError indicates the audit ran end to end but one or more
// prompt/backend pairs failed, so the score rests on partial data.
type AuditIncompleteError struct {
	Message string
}

func (e *AuditIncompleteError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var incompleteErr *AuditIncompleteError
		if errors.As(err, &incompleteErr) {
			os.Exit(ExitAuditErrors)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
