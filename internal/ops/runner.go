package ops

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samcharles93/aif/internal/logger"
	"github.com/samcharles93/aif/internal/metrics"
	"github.com/samcharles93/aif/pkg/aif"
)

// Runner executes operations on files on disk.
type Runner struct {
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewRunner returns a Runner. m may be nil.
func NewRunner(log logger.Logger, m *metrics.Metrics) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{log: log, metrics: m}
}

// Result describes a completed mutating operation.
type Result struct {
	Op       Operation
	InBytes  int64
	OutBytes int64
	Header   aif.Header
}

// Info inspects each path in order and hands its report to fn. It stops at
// the first file that cannot be read or the first error from fn.
func (r *Runner) Info(ctx context.Context, paths []string, fn func(path string, rep aif.Report) error) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		rep, err := r.inspect(path)
		if err != nil {
			r.metrics.Observe(OpInfo.String(), Outcome(err), 0, 0, time.Since(start))
			return err
		}
		r.metrics.Observe(OpInfo.String(), metrics.ResultOK, rep.Size, 0, time.Since(start))
		if !rep.ChecksumOK {
			r.log.Debug("checksum mismatch", "path", path,
				"stored", rep.StoredChecksum, "computed", rep.ComputedChecksum)
		}
		if err := fn(path, rep); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) inspect(path string) (aif.Report, error) {
	f, err := aif.Open(path)
	if err != nil {
		return aif.Report{}, err
	}
	defer f.Close()
	return f.Report(), nil
}

// Run applies a mutating operation to in and writes the result to out.
// Parameters are checked before in is opened, and out is only created once
// the whole result is ready.
func (r *Runner) Run(ctx context.Context, op Operation, in, out string, p Params) (Result, error) {
	res := Result{Op: op}
	if !op.Mutating() {
		return res, fmt.Errorf("%w: %s does not produce an image", ErrUnknownOperation, op)
	}
	if err := p.Validate(op); err != nil {
		return res, err
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	log := r.log.With("op", op.String(), "in", in)
	start := time.Now()
	err := r.run(log, op, in, out, p, &res)
	r.metrics.Observe(op.String(), Outcome(err), res.InBytes, res.OutBytes, time.Since(start))
	if err != nil {
		var herr *aif.HeaderError
		if errors.As(err, &herr) {
			log.Debug("header rejected", "fields", herr.Fields)
		}
		return res, err
	}
	log.Debug("wrote output", "out", out, "bytes", res.OutBytes,
		"format", res.Header.PixelFormat, "compression", res.Header.Compression)
	return res, nil
}

func (r *Runner) run(log logger.Logger, op Operation, in, out string, p Params, res *Result) error {
	f, err := aif.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()
	res.InBytes = f.Size()

	img, err := f.Image()
	if err != nil {
		return err
	}
	log.Debug("decoded input", "width", img.Header.Width, "height", img.Header.Height,
		"format", img.Header.PixelFormat, "compression", img.Header.Compression)

	if err := Transform(img, op, p); err != nil {
		return err
	}
	n, err := aif.WriteFile(out, img)
	if err != nil {
		return err
	}
	res.OutBytes = n
	res.Header = img.Header
	return nil
}
