package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Command completed
	ExitInvalidInput = 1 // Result records violate the input contract
	ExitError        = 2 // Configuration or runtime error
)

// InvalidInputError reports result records that failed validation without
// the command itself failing.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invalid *InvalidInputError
	if errors.As(err, &invalid) || errors.Is(err, models.ErrInvalidResult) {
		return ExitInvalidInput
	}
	return ExitError
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
