package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/aif/internal/logger"
)

const (
	headerRequestID  = "X-Request-Id"
	mimeAIF          = "application/x-aif"
	ctxKeyRequestID  = "request_id"
	defaultBodyLimit = 64 << 20
)

// requestID tags each request with an id, echoes it in the response header
// and stores a request-scoped logger in the request context.
func requestID(base logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := c.Request().Header.Get(headerRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(ctxKeyRequestID, id)
			c.Response().Header().Set(headerRequestID, id)
			req := c.Request()
			ctx := logger.WithContext(req.Context(), base.With("request_id", id))
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func requestIDOf(c *echo.Context) string {
	id, _ := c.Get(ctxKeyRequestID).(string)
	return id
}

// readBody reads at most limit bytes of the request body.
func readBody(c *echo.Context, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, limit+1))
	if err != nil {
		return nil, newInvalidRequest(fmt.Sprintf("read body: %v", err))
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Blob(status, echo.MIMEApplicationJSON, b)
}

func writeError(c *echo.Context, err error) error {
	status, errType := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error("request failed", "path", c.Request().URL.Path, "error", err)
	}
	return writeJSON(c, status, ErrorBody{Error: ErrorDetail{
		Message:   err.Error(),
		Type:      errType,
		RequestID: requestIDOf(c),
	}})
}
