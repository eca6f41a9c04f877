package main

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/samcharles93/aif/pkg/aif"
)

func TestExitErrorMessages(t *testing.T) {
	t.Parallel()

	denied := &fs.PathError{Op: "open", Path: "x.aif", Err: errors.New("permission denied")}
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "open input", err: denied, want: "Failed to open file: Permission denied"},
		{name: "open output", err: fmt.Errorf("%w: %w", aif.ErrWrite, denied), want: "Failed to open output file: Permission denied"},
		{name: "write output", err: fmt.Errorf("%w: %w", aif.ErrWrite, errors.New("no space left on device")), want: "Failed to write to output file: No space left on device"},
		{name: "invalid", err: &aif.HeaderError{Fields: []string{"magic"}}, want: "'in.aif' is not a valid AIF file."},
		{name: "truncated", err: fmt.Errorf("%w: row 3 data", aif.ErrTruncated), want: "Unexpected EOF"},
		{name: "corrupt", err: fmt.Errorf("row 0: %w", aif.ErrCorruptData), want: "Invalid compressed data"},
		{name: "too large", err: aif.ErrTooLarge, want: "'in.aif' is too large to load"},
	}
	for _, tt := range tests {
		err := exitError("in.aif", tt.err)
		if got := err.Error(); got != tt.want {
			t.Fatalf("%s: got %q want %q", tt.name, got, tt.want)
		}
	}
}

func TestSentenceCase(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"no such file or directory": "No such file or directory",
		"":                          "",
		"Already":                   "Already",
	} {
		if got := sentenceCase(in); got != want {
			t.Fatalf("sentenceCase(%q): got %q want %q", in, got, want)
		}
	}
}
