package aif

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Image is a validated header together with its decoded pixels.
type Image struct {
	Header Header
	Pixels []byte
}

// NewImage builds an image from raw pixels. The pixel buffer is owned by the
// image from then on.
func NewImage(format PixelFormat, width, height uint32, pixels []byte) (*Image, error) {
	h := NewHeader(format, CompressionNone, width, height)
	if err := h.Check(); err != nil {
		return nil, err
	}
	if len(pixels) != h.PixelBytes() {
		return nil, fmt.Errorf("aif: pixel buffer is %d bytes, want %d", len(pixels), h.PixelBytes())
	}
	return &Image{Header: h, Pixels: pixels}, nil
}

// Decode validates an in-memory AIF file and decodes its pixels.
func Decode(data []byte) (*Image, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.Image()
}

// Encode serialises img with its current header settings and a fresh
// checksum.
func Encode(img *Image) ([]byte, error) {
	m := &memFile{buf: make([]byte, 0, HeaderSize+len(img.Pixels))}
	if _, err := img.Save(m); err != nil {
		return nil, err
	}
	return m.buf, nil
}

// Save writes img to ws and returns the number of bytes written. The
// checksum is stamped once the whole body is out.
func (img *Image) Save(ws io.WriteSeeker) (int64, error) {
	w, err := NewWriter(ws, img.Header)
	if err != nil {
		return 0, err
	}
	if err := w.WritePixels(img.Pixels); err != nil {
		return w.Written(), err
	}
	sum, err := w.Finalise()
	if err != nil {
		return w.Written(), err
	}
	img.Header.Checksum = sum
	return w.Written(), nil
}

// Brighten adjusts every pixel by amount percent.
func (img *Image) Brighten(amount int) error {
	return Brighten(img.Pixels, img.Header.PixelFormat, amount)
}

// Convert switches the pixel format. The format byte is rewritten even when
// the image already has the requested format.
func (img *Image) Convert(to PixelFormat) error {
	pixels, err := ConvertPixels(img.Pixels, img.Header.PixelFormat, to)
	if err != nil {
		return err
	}
	img.Pixels = pixels
	img.Header.PixelFormat = to
	return nil
}

func (img *Image) SetCompression(c Compression) error {
	if !c.Valid() {
		return &HeaderError{Fields: []string{"compression"}}
	}
	img.Header.Compression = c
	return nil
}

// WriteFile saves img to path atomically. The file is written under a
// unique temporary name in the same directory, finalised, synced and then
// renamed into place, so a failed write never leaves a file with a stale
// checksum at path.
func WriteFile(path string, img *Image) (int64, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	cleanup := func(err error) (int64, error) {
		_ = f.Close()
		_ = os.Remove(tmp)
		return 0, err
	}

	n, err := img.Save(f)
	if err != nil {
		return cleanup(err)
	}
	if err := f.Sync(); err != nil {
		return cleanup(fmt.Errorf("%w: %w", ErrWrite, err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return n, nil
}
