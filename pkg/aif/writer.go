package aif

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Writer produces an AIF file on a seekable destination.
//
// The header goes out first with a zeroed checksum field. Every byte written
// after that also feeds a running checksum, and Finalise seeks back to patch
// just the two checksum bytes, so the stored value always covers the final
// byte layout of the file.
type Writer struct {
	f       io.WriteSeeker
	header  Header
	sum     Summer
	body    bool
	closed  bool
	written int64
}

// NewWriter validates h and writes it to the start of f. If f can be
// truncated (eg an *os.File being reused) it is emptied first.
func NewWriter(f io.WriteSeeker, h Header) (*Writer, error) {
	if f == nil {
		return nil, errors.New("aif: nil destination")
	}
	if err := h.Check(); err != nil {
		return nil, err
	}

	if t, ok := f.(interface{ Truncate(int64) error }); ok {
		if err := t.Truncate(0); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWrite, err)
		}
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	w := &Writer{f: f, header: h}
	w.header.Checksum = 0

	var hdr [HeaderSize]byte
	if !EncodeHeader(hdr[:], w.header) {
		return nil, errors.New("aif: encode header failed")
	}
	if _, err := w.write(hdr[:]); err != nil {
		return nil, err
	}
	return w, nil
}

// Header returns the header as written so far. The checksum is only set
// after Finalise.
func (w *Writer) Header() Header {
	return w.header
}

// WritePixels writes the image body, compressing it when the header says so.
// pixels must be exactly one decoded image.
func (w *Writer) WritePixels(pixels []byte) error {
	if w.closed {
		return errors.New("aif: writer already finalised")
	}
	if w.body {
		return errors.New("aif: pixels already written")
	}
	if want := w.header.PixelBytes(); len(pixels) != want {
		return fmt.Errorf("aif: pixel buffer is %d bytes, header needs %d", len(pixels), want)
	}
	w.body = true

	switch w.header.Compression {
	case CompressionRLE:
		_, err := CompressImage(bodyWriter{w}, pixels, int(w.header.Width), int(w.header.Height), w.header.BytesPerPixel())
		return err
	default:
		_, err := w.write(pixels)
		return err
	}
}

// Written returns the number of bytes written, header included.
func (w *Writer) Written() int64 {
	return w.written
}

// Finalise patches the checksum field and leaves the file position at the
// end of the data. The writer must not be used again.
func (w *Writer) Finalise() (uint16, error) {
	if w.closed {
		return 0, errors.New("aif: writer already finalised")
	}
	if !w.body {
		return 0, errors.New("aif: pixels not written")
	}
	w.closed = true

	sum := w.sum.Sum16()
	var field [checksumSize]byte
	binary.LittleEndian.PutUint16(field[:], sum)

	if _, err := w.f.Seek(int64(ChecksumOffset), io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if _, err := w.f.Write(field[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if _, err := w.f.Seek(w.written, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	w.header.Checksum = sum
	return sum, nil
}

func (w *Writer) write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	w.written += int64(n)
	_, _ = w.sum.Write(p[:n])
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return n, nil
}

// bodyWriter lets CompressImage stream rows through the checksumming path.
type bodyWriter struct {
	w *Writer
}

func (b bodyWriter) Write(p []byte) (int, error) {
	return b.w.write(p)
}

// memFile is an in-memory io.WriteSeeker used to encode images to a slice.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(m.pos) + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("aif: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("aif: negative position")
	}
	m.pos = int(abs)
	return abs, nil
}

func (m *memFile) Truncate(size int64) error {
	if size < 0 || size > int64(len(m.buf)) {
		return errors.New("aif: invalid truncate size")
	}
	m.buf = m.buf[:size]
	if int64(m.pos) > size {
		m.pos = int(size)
	}
	return nil
}
