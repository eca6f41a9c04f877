// Package ops runs the aif-tools stages against files and in-memory buffers.
package ops

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/samcharles93/aif/internal/metrics"
	"github.com/samcharles93/aif/pkg/aif"
)

type Operation int

const (
	OpInfo Operation = iota
	OpBrighten
	OpConvertColor
	OpDecompress
	OpCompress
)

var ErrUnknownOperation = errors.New("unknown operation")

var operationNames = map[string]Operation{
	"info":          OpInfo,
	"brighten":      OpBrighten,
	"convert-color": OpConvertColor,
	"decompress":    OpDecompress,
	"compress":      OpCompress,
}

func ParseOperation(name string) (Operation, error) {
	if op, ok := operationNames[strings.ToLower(name)]; ok {
		return op, nil
	}
	return 0, fmt.Errorf("%w %q (want one of %s)", ErrUnknownOperation, name, strings.Join(OperationNames(), ", "))
}

// OperationNames returns the accepted operation names in sorted order.
func OperationNames() []string {
	names := make([]string, 0, len(operationNames))
	for name := range operationNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (op Operation) String() string {
	for name, o := range operationNames {
		if o == op {
			return name
		}
	}
	return fmt.Sprintf("operation(%d)", int(op))
}

// Mutating reports whether op produces an output file.
func (op Operation) Mutating() bool {
	return op >= OpBrighten && op <= OpCompress
}

// Params carries the per-operation arguments. Amount is used by brighten,
// Format by convert-color.
type Params struct {
	Amount int
	Format aif.PixelFormat
}

// Validate rejects parameters before any input is read.
func (p Params) Validate(op Operation) error {
	switch op {
	case OpBrighten:
		if p.Amount < -100 || p.Amount > 100 {
			return fmt.Errorf("%w: got %d", aif.ErrAmountRange, p.Amount)
		}
	case OpConvertColor:
		if !p.Format.Valid() {
			return &aif.FormatError{Name: p.Format.String()}
		}
	case OpInfo, OpDecompress, OpCompress:
	default:
		return fmt.Errorf("%w %d", ErrUnknownOperation, int(op))
	}
	return nil
}

// Transform applies a mutating operation to img in place. Brighten and
// convert-color keep the input compression.
func Transform(img *aif.Image, op Operation, p Params) error {
	if err := p.Validate(op); err != nil {
		return err
	}
	switch op {
	case OpBrighten:
		return img.Brighten(p.Amount)
	case OpConvertColor:
		return img.Convert(p.Format)
	case OpDecompress:
		return img.SetCompression(aif.CompressionNone)
	case OpCompress:
		return img.SetCompression(aif.CompressionRLE)
	default:
		return fmt.Errorf("%w: %s does not produce an image", ErrUnknownOperation, op)
	}
}

// Apply decodes data, runs op and encodes the result.
func Apply(op Operation, data []byte, p Params) ([]byte, error) {
	if err := p.Validate(op); err != nil {
		return nil, err
	}
	img, err := aif.Decode(data)
	if err != nil {
		return nil, err
	}
	if err := Transform(img, op, p); err != nil {
		return nil, err
	}
	return aif.Encode(img)
}

// Outcome maps an operation error to a metrics result label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, aif.ErrInvalidFile):
		return metrics.ResultInvalid
	case errors.Is(err, aif.ErrCorruptData), errors.Is(err, aif.ErrTruncated):
		return metrics.ResultCorrupt
	default:
		return metrics.ResultError
	}
}
