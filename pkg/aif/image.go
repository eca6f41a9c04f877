package aif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// initialPixelCap bounds the up-front allocation in DecompressImage; the
// buffer grows with the rows actually decoded.
const initialPixelCap = 1 << 20

// CompressImage writes height length-prefixed RLE rows to w and returns the
// number of bytes written, prefixes included.
func CompressImage(w io.Writer, pixels []byte, width, height, bpp int) (int, error) {
	rowBytes := width * bpp
	total, ok := mulSize(uint64(rowBytes), uint64(height))
	if !ok || len(pixels) < total {
		return 0, fmt.Errorf("%w: pixel buffer holds %d bytes, %dx%d image needs more",
			ErrTruncated, len(pixels), width, height)
	}

	// One scratch buffer sized for the worst case, reused for every row.
	buf := make([]byte, 0, 2+MaxRowSize(width, bpp))
	written := 0
	for y := range height {
		row := pixels[y*rowBytes : (y+1)*rowBytes]
		buf = AppendRow(buf[:2], row, width, bpp)

		n := len(buf) - 2
		if n > maxRowLength {
			return written, fmt.Errorf("%w: row %d is %d bytes", ErrRowOverflow, y, n)
		}
		binary.LittleEndian.PutUint16(buf[:2], uint16(n))

		if _, err := w.Write(buf); err != nil {
			if !errors.Is(err, ErrWrite) {
				err = fmt.Errorf("%w: %w", ErrWrite, err)
			}
			return written, err
		}
		written += len(buf)
	}
	return written, nil
}

// DecompressImage reads height length-prefixed RLE rows from r and returns
// the decoded pixel buffer. Any failure discards the whole image.
//
// Memory use follows the input: a header that promises more rows than r
// delivers fails with ErrTruncated before the full image is allocated.
func DecompressImage(r io.Reader, width, height, bpp int) ([]byte, error) {
	if width < 0 || height < 0 || bpp <= 0 {
		return nil, fmt.Errorf("aif: bad image geometry %dx%d at %d bytes per pixel", width, height, bpp)
	}
	if blocks := (width + maxBlockPixels - 1) / maxBlockPixels; blocks*(1+bpp) > maxRowLength {
		return nil, fmt.Errorf("%w: a %d pixel row cannot be encoded in %d bytes", ErrCorruptData, width, maxRowLength)
	}
	rowBytes := width * bpp
	total, ok := mulSize(uint64(rowBytes), uint64(height))
	if !ok {
		return nil, fmt.Errorf("%w: %dx%d image does not fit in memory", ErrTooLarge, width, height)
	}

	pixels := make([]byte, 0, min(total, initialPixelCap))
	row := make([]byte, rowBytes)
	var prefix [2]byte
	comp := make([]byte, 0, min(MaxRowSize(width, bpp), maxRowLength))
	for y := range height {
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			return nil, readErr(err, "row %d length", y)
		}
		n := int(binary.LittleEndian.Uint16(prefix[:]))

		if cap(comp) < n {
			comp = make([]byte, n)
		}
		comp = comp[:n]
		if _, err := io.ReadFull(r, comp); err != nil {
			return nil, readErr(err, "row %d data", y)
		}

		if err := DecodeRow(comp, row, bpp); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		pixels = append(pixels, row...)
	}
	return pixels, nil
}

// minCompressedSize is the smallest RLE body that can describe a
// width x height image: every row needs its length prefix plus one repeat
// block per 255 pixels.
func minCompressedSize(width, height uint32, bpp int) (int, bool) {
	blocks := (uint64(width) + maxBlockPixels - 1) / maxBlockPixels
	perRow := 2 + blocks*uint64(1+bpp)
	return mulSize(perRow, uint64(height))
}

func readErr(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncated, what)
	}
	return fmt.Errorf("read %s: %w", what, err)
}
