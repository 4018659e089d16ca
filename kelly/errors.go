package kelly

import (
	"errors"
	"fmt"
)

// ErrConfiguration is wrapped by every error that is caused by bad run
// parameters. Nothing is enumerated once one of these is returned.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrMaxMultipleTooLarge = errors.New("max_multiple exceeds selection count")
	ErrMaxMultipleTooSmall = errors.New("max_multiple must be at least 1")
	ErrBankroll            = errors.New("bankroll must be positive")
	ErrTooManySelections   = errors.New("too many selections")
	ErrModelTooLarge       = errors.New("model does not fit in memory")
)

func configErr(err error, format string, args ...any) error {
	if format == "" {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return fmt.Errorf("%w: %w: %s", ErrConfiguration, err, fmt.Sprintf(format, args...))
}
