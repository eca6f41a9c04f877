package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/aif/pkg/aif"
)

// exitError turns an operation error into the message printed for in and
// exit status 1.
func exitError(in string, err error) error {
	var ferr *aif.FormatError
	var perr *fs.PathError
	var msg string
	switch {
	case errors.Is(err, aif.ErrInvalidFile):
		msg = fmt.Sprintf("'%s' is not a valid AIF file.", in)
	case errors.Is(err, aif.ErrTruncated):
		msg = "Unexpected EOF"
	case errors.Is(err, aif.ErrCorruptData):
		msg = "Invalid compressed data"
	case errors.Is(err, aif.ErrAmountRange):
		msg = "Amount must be between -100 and 100"
	case errors.As(err, &ferr):
		msg = fmt.Sprintf("Unknown color format '%s' (want rgb8 or gray8)", ferr.Name)
	case errors.Is(err, aif.ErrWrite):
		if errors.As(err, &perr) && perr.Op == "open" {
			msg = "Failed to open output file: " + sentenceCase(perr.Err.Error())
		} else {
			cause := strings.TrimPrefix(err.Error(), aif.ErrWrite.Error()+": ")
			msg = "Failed to write to output file: " + sentenceCase(cause)
		}
	case errors.As(err, &perr):
		msg = "Failed to open file: " + sentenceCase(perr.Err.Error())
	case errors.Is(err, aif.ErrTooLarge):
		msg = fmt.Sprintf("'%s' is too large to load", in)
	default:
		msg = fmt.Sprintf("error: %v", err)
	}
	return cli.Exit(msg, 1)
}

// sentenceCase capitalises an OS error text the way strerror prints it,
// e.g. "no such file or directory" -> "No such file or directory".
func sentenceCase(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
