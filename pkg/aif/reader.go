package aif

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"golang.org/x/sys/unix"
)

// File is an AIF file held in memory. Its header has been decoded but not
// validated, so it can back both the info report and the mutating stages.
type File struct {
	Data    []byte
	Header  Header
	mmapped bool
}

// Open maps an AIF file read-only. If mmap is unavailable, it falls back to
// ReadAt-based loading. The returned file must be closed to release any
// mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size, err := fileSize(stat.Size())
	if err != nil {
		return nil, err
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		af, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return af, nil
	}

	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads an AIF file from a random-access reader without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	n, err := fileSize(size)
	if err != nil {
		return nil, err
	}
	data, err := readAllAt(r, n)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// Parse wraps an in-memory AIF file. data is not copied.
func Parse(data []byte) (*File, error) {
	return parseFileData(data, false)
}

// fileSize checks that an input of size bytes can hold a header and be
// addressed as a single slice.
func fileSize(size int64) (int, error) {
	switch {
	case size < 0:
		return 0, fmt.Errorf("aif: negative input size %d", size)
	case uint64(size) > math.MaxInt:
		return 0, fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	case size < HeaderSize:
		return 0, fmt.Errorf("%w: %d byte file has no complete header", ErrTruncated, size)
	}
	return int(size), nil
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF {
			if off == int64(size) {
				break
			}
			return nil, fmt.Errorf("%w: read %d of %d bytes", ErrTruncated, off, size)
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	hdr, ok := DecodeHeader(data)
	if !ok {
		return nil, fmt.Errorf("%w: %d byte file has no complete header", ErrTruncated, len(data))
	}
	return &File{Data: data, Header: hdr, mmapped: mmapped}, nil
}

// Close releases any mmap backing. Slices returned by Body must not be used
// after Close.
func (f *File) Close() error {
	if f == nil || f.Data == nil {
		return nil
	}
	var err error
	if f.mmapped {
		err = unix.Munmap(f.Data)
	}
	f.Data = nil
	f.mmapped = false
	return err
}

// Size returns the file size in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Data))
}

// Body returns a zero-copy slice of everything after the header.
func (f *File) Body() []byte {
	if len(f.Data) < HeaderSize {
		return nil
	}
	return f.Data[HeaderSize:]
}

// Report runs every header check and the checksum comparison. It never
// fails: invalid fields are reported, not rejected.
func (f *File) Report() Report {
	computed := Checksum(f.Data)
	return Report{
		Size:             f.Size(),
		Header:           f.Header,
		Validation:       f.Header.Validate(),
		StoredChecksum:   f.Header.Checksum,
		ComputedChecksum: computed,
		ChecksumOK:       computed == f.Header.Checksum,
	}
}

// Image validates the header and decodes the pixels into a new buffer that
// stays valid after Close.
func (f *File) Image() (*Image, error) {
	if err := f.Header.Check(); err != nil {
		return nil, err
	}
	pixels, err := loadPixels(&f.Header, f.Body())
	if err != nil {
		return nil, err
	}
	return &Image{Header: f.Header, Pixels: pixels}, nil
}

func loadPixels(h *Header, body []byte) ([]byte, error) {
	switch h.Compression {
	case CompressionNone:
		n := h.PixelBytes()
		if n < 0 || len(body) < n {
			return nil, fmt.Errorf("%w: %dx%d %s image needs more than the %d bytes present",
				ErrTruncated, h.Width, h.Height, h.PixelFormat, len(body))
		}
		pixels := make([]byte, n)
		copy(pixels, body)
		return pixels, nil
	case CompressionRLE:
		need, ok := minCompressedSize(h.Width, h.Height, h.BytesPerPixel())
		if !ok || len(body) < need {
			return nil, fmt.Errorf("%w: %d compressed rows need at least %d bytes, got %d",
				ErrTruncated, h.Height, need, len(body))
		}
		return DecompressImage(bytes.NewReader(body), int(h.Width), int(h.Height), h.BytesPerPixel())
	default:
		return nil, &HeaderError{Fields: []string{"compression"}}
	}
}

// Report is the result of inspecting a file without modifying it.
type Report struct {
	Size             int64
	Header           Header
	Validation       ValidationReport
	StoredChecksum   uint16
	ComputedChecksum uint16
	ChecksumOK       bool
}
