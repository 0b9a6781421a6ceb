package model

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is matched by every data-unavailability failure.
var ErrInsufficientData = errors.New("insufficient data")

// DataUnavailableError reports that a required instrument had no usable history.
type DataUnavailableError struct {
	Symbol string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("insufficient data: %s", e.Reason)
	}
	return fmt.Sprintf("insufficient data for %s: %s", e.Symbol, e.Reason)
}

func (e *DataUnavailableError) Is(target error) bool { return target == ErrInsufficientData }
