package bandtools

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyDirectory = errors.New("no matching raster files in directory")
	ErrShapeMismatch  = errors.New("band shapes differ")
)

// FileAccessError wraps a failure to open or read a raster file.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("accessing %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// MissingBandError is returned when a band identifier is absent from a
// Collection.
type MissingBandError struct {
	Band string
}

func (e *MissingBandError) Error() string {
	return fmt.Sprintf("band %s not found in collection", e.Band)
}

// DegenerateNormalizationError is returned when an array cannot be divided by
// its own maximum: the maximum is zero or there are no finite values.
type DegenerateNormalizationError struct {
	Subject string
}

func (e *DegenerateNormalizationError) Error() string {
	return fmt.Sprintf("cannot normalize %s: maximum is zero or undefined", e.Subject)
}
