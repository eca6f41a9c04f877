package api

import (
	"errors"
	"net/http"

	"github.com/samcharles93/aif/internal/ops"
	"github.com/samcharles93/aif/pkg/aif"
)

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrBodyTooLarge   = errors.New("request body too large")
)

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

// classify maps an error to the HTTP status and error type reported to the
// client.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBodyTooLarge), errors.Is(err, aif.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "request_too_large"
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, aif.ErrAmountRange),
		errors.Is(err, aif.ErrUnknownFormat),
		errors.Is(err, ops.ErrUnknownOperation):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, aif.ErrInvalidFile):
		return http.StatusUnprocessableEntity, "invalid_file"
	case errors.Is(err, aif.ErrTruncated), errors.Is(err, aif.ErrCorruptData):
		return http.StatusUnprocessableEntity, "corrupt_file"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}
