package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // All cases passed
	ExitCaseFailed = 1 // One or more cases failed
	ExitError      = 2 // Configuration or runtime error
)

// CaseFailureError indicates that the run completed, but one or more dataset
// cases did not pass.
type CaseFailureError struct {
	Failed int
	Total  int
}

func (e *CaseFailureError) Error() string {
	return fmt.Sprintf("evaluation completed with %d of %d case(s) failing", e.Failed, e.Total)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var caseErr *CaseFailureError
	if errors.As(err, &caseErr) {
		return ExitCaseFailed
	}
	// All other errors are configuration/runtime errors
	return ExitError
}
