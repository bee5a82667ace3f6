package cli

import (
	goerrors "errors"

	"modkit/internal/dispatch"
	"modkit/internal/errors"
)

// Exit codes for the modkit CLI. Module exit codes from 'modkit run' are
// propagated verbatim and may overlap with these.
const (
	// ExitSuccess indicates successful command execution.
	ExitSuccess = 0

	// ExitFailure indicates a module install step or runtime failure.
	ExitFailure = 1

	// ExitInvalidArguments indicates invalid command arguments.
	ExitInvalidArguments = 3

	// ExitMissingPrerequisites indicates a required directory or file is missing.
	ExitMissingPrerequisites = 4
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *dispatch.ExitError
	if goerrors.As(err, &exitErr) {
		return exitErr.Code
	}

	if cliErr := errors.AsCLIError(err); cliErr != nil {
		switch cliErr.Category {
		case errors.Argument:
			return ExitInvalidArguments
		case errors.Prerequisite:
			return ExitMissingPrerequisites
		}
	}
	return ExitFailure
}
