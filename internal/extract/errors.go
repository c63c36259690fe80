package extract

import (
	"errors"
	"fmt"
)

// ErrNoInputData is matched by errors.Is for every NoInputDataError.
var ErrNoInputData = errors.New("no input data")

// NoInputDataError reports an input directory without any CSV file. It is the
// only error the loader raises for its inputs; it stops the pipeline.
type NoInputDataError struct {
	Dir     string
	Pattern string
}

func (e *NoInputDataError) Error() string {
	return fmt.Sprintf("no %s files found in %s", e.Pattern, e.Dir)
}

// Unwrap lets errors.Is match ErrNoInputData.
func (e *NoInputDataError) Unwrap() error {
	return ErrNoInputData
}

// IsNoInputData reports whether err is or wraps a NoInputDataError.
func IsNoInputData(err error) bool {
	return errors.Is(err, ErrNoInputData)
}
