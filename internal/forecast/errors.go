package forecast

import (
	"errors"
	"fmt"
)

// ErrInsufficientHistory is matched by the ValidationError returned for short histories.
var ErrInsufficientHistory = errors.New("insufficient historical data")

// ValidationError reports input that cannot be forecast.
type ValidationError struct {
	Required int
	Got      int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: need at least %d data points, got %d", ErrInsufficientHistory, e.Required, e.Got)
}

func (e *ValidationError) Unwrap() error {
	return ErrInsufficientHistory
}
