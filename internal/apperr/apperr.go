// Package apperr
package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Every error leaving a stage carries exactly one kind so
// the trading loop can classify it with errors.Is without inspecting
// messages.
var (
	ErrExchange      = errors.New("exchange error")
	ErrData          = errors.New("data error")
	ErrAPIResponse   = errors.New("API response error")
	ErrIndicatorData = errors.New("indicator data error")
	ErrNotification  = errors.New("notification error")
	ErrConfiguration = errors.New("configuration error")
)

// Wrap attaches a kind to err. Returns nil when err is nil.
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Errorf builds a new error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}
