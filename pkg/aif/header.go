package aif

import (
	"encoding/binary"
	"math"
	"math/bits"
)

type Header struct {
	Magic       [4]byte
	Checksum    uint16
	PixelFormat PixelFormat
	Compression Compression
	Width       uint32
	Height      uint32
	PixelOffset uint32
}

// NewHeader returns a header with the magic set and the pixel offset pointing
// just past the fixed header.
func NewHeader(format PixelFormat, compression Compression, width, height uint32) Header {
	h := Header{
		PixelFormat: format,
		Compression: compression,
		Width:       width,
		Height:      height,
		PixelOffset: HeaderSize,
	}
	copy(h.Magic[:], Magic)
	return h
}

// ValidationReport holds one flag per header check. The checks are
// independent: a bad field never changes how another field is read.
type ValidationReport struct {
	MagicOK       bool
	FormatOK      bool
	CompressionOK bool
	WidthOK       bool
	HeightOK      bool
}

func (r ValidationReport) Valid() bool {
	return r.MagicOK && r.FormatOK && r.CompressionOK && r.WidthOK && r.HeightOK
}

// InvalidFields lists the names of the failed checks in header order.
func (r ValidationReport) InvalidFields() []string {
	var fields []string
	if !r.MagicOK {
		fields = append(fields, "magic")
	}
	if !r.FormatOK {
		fields = append(fields, "pixel format")
	}
	if !r.CompressionOK {
		fields = append(fields, "compression")
	}
	if !r.WidthOK {
		fields = append(fields, "width")
	}
	if !r.HeightOK {
		fields = append(fields, "height")
	}
	return fields
}

func (h *Header) Validate() ValidationReport {
	return ValidationReport{
		MagicOK:       string(h.Magic[:]) == Magic,
		FormatOK:      h.PixelFormat.Valid(),
		CompressionOK: h.Compression.Valid(),
		WidthOK:       h.Width > 0,
		HeightOK:      h.Height > 0,
	}
}

// Check applies the policy of every mutating operation: any failed header
// check is fatal and reported as a *HeaderError.
func (h *Header) Check() error {
	r := h.Validate()
	if r.Valid() {
		return nil
	}
	return &HeaderError{Fields: r.InvalidFields()}
}

func (h *Header) BytesPerPixel() int {
	return h.PixelFormat.BytesPerPixel()
}

// RowBytes is the decoded size of one row, or -1 if it does not fit in an
// int.
func (h *Header) RowBytes() int {
	n, ok := mulSize(uint64(h.Width), uint64(h.BytesPerPixel()))
	if !ok {
		return -1
	}
	return n
}

// PixelBytes is the decoded size of the whole image, or -1 if it does not
// fit in an int.
func (h *Header) PixelBytes() int {
	n, ok := mulSize(uint64(h.Width)*uint64(h.BytesPerPixel()), uint64(h.Height))
	if !ok {
		return -1
	}
	return n
}

// mulSize multiplies two sizes, failing instead of wrapping.
func mulSize(a, b uint64) (int, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// DecodeHeader extracts header fields without validating them.
func DecodeHeader(b []byte) (Header, bool) {
	var h Header
	if len(b) < HeaderSize {
		return h, false
	}
	copy(h.Magic[:], b[:len(Magic)])
	h.Checksum = binary.LittleEndian.Uint16(b[ChecksumOffset:])
	h.PixelFormat = PixelFormat(b[pixelFormatOffset])
	h.Compression = Compression(b[compressionOffset])
	h.Width = binary.LittleEndian.Uint32(b[widthOffset:])
	h.Height = binary.LittleEndian.Uint32(b[heightOffset:])
	h.PixelOffset = binary.LittleEndian.Uint32(b[pixelOffsetOffset:])
	return h, true
}

func EncodeHeader(b []byte, h Header) bool {
	if len(b) < HeaderSize {
		return false
	}
	copy(b[:len(Magic)], h.Magic[:])
	binary.LittleEndian.PutUint16(b[ChecksumOffset:], h.Checksum)
	b[pixelFormatOffset] = byte(h.PixelFormat)
	b[compressionOffset] = byte(h.Compression)
	binary.LittleEndian.PutUint32(b[widthOffset:], h.Width)
	binary.LittleEndian.PutUint32(b[heightOffset:], h.Height)
	binary.LittleEndian.PutUint32(b[pixelOffsetOffset:], h.PixelOffset)
	return true
}
