package aif

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidFile   = errors.New("not a valid AIF file")
	ErrTruncated     = errors.New("unexpected EOF")
	ErrTooLarge      = errors.New("input too large to load")
	ErrCorruptData   = errors.New("invalid compressed data")
	ErrRowOverflow   = errors.New("compressed row exceeds 65535 bytes")
	ErrAmountRange   = errors.New("amount must be between -100 and 100")
	ErrUnknownFormat = errors.New("unknown pixel format")
	ErrWrite         = errors.New("failed to write output file")
)

// HeaderError names the header fields that failed validation.
type HeaderError struct {
	Fields []string
}

func (e *HeaderError) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalidFile.Error()
	}
	return fmt.Sprintf("%s: invalid %s", ErrInvalidFile, strings.Join(e.Fields, ", "))
}

func (e *HeaderError) Unwrap() error {
	return ErrInvalidFile
}

// FormatError reports an unrecognised pixel format name.
type FormatError struct {
	Name string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q (want rgb8 or gray8)", ErrUnknownFormat, e.Name)
}

func (e *FormatError) Unwrap() error {
	return ErrUnknownFormat
}
