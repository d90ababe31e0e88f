// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrAccountNotFound   = errors.New("bank account not found")
	ErrPositionNotFound  = errors.New("cash position not found")
	ErrDuplicateEndToEnd = errors.New("end-to-end id already used")
	ErrStatusConflict    = errors.New("payment status changed concurrently")
	ErrWatchlistEmpty    = errors.New("watch-list source returned no entries")
	ErrEventNotFound     = errors.New("treasury event not found")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
