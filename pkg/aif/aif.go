// Package aif reads and writes AIF image files.
//
// An AIF file is a fixed 20-byte header followed by either raw row-major
// pixels or a stream of length-prefixed RLE rows. The whole file is covered
// by a 16-bit Fletcher-style checksum stored in the header.
package aif

// AIF global constants must never change.
const (
	// Magic is the file magic for all AIF files.
	// It is encoded as "AIF\0".
	Magic = "AIF\x00"

	// ChecksumOffset is the first byte after the magic.
	ChecksumOffset    = 4
	checksumSize      = 2
	pixelFormatOffset = ChecksumOffset + checksumSize
	compressionOffset = pixelFormatOffset + 1
	widthOffset       = compressionOffset + 1
	heightOffset      = widthOffset + 4
	pixelOffsetOffset = heightOffset + 4

	// HeaderSize is the size of the fixed header in bytes.
	HeaderSize = pixelOffsetOffset + 4

	// maxRowLength is the largest compressed row the 2-byte prefix can describe.
	maxRowLength = 0xFFFF

	// maxBlockPixels bounds both repeat and literal block counts.
	maxBlockPixels = 255
)

type PixelFormat uint8

const (
	FormatRGB8  PixelFormat = 1
	FormatGray8 PixelFormat = 2
)

// Valid reports whether f is a recognised pixel format.
func (f PixelFormat) Valid() bool {
	return f == FormatRGB8 || f == FormatGray8
}

// BytesPerPixel returns the pixel stride, or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB8:
		return 3
	case FormatGray8:
		return 1
	default:
		return 0
	}
}

func (f PixelFormat) BitsPerPixel() int {
	return f.BytesPerPixel() * 8
}

// Name returns the human-readable format name, or "" for an unknown format.
func (f PixelFormat) Name() string {
	switch f {
	case FormatRGB8:
		return "8-bit RGB"
	case FormatGray8:
		return "8-bit grayscale"
	default:
		return ""
	}
}

// String returns the short identifier accepted by ParsePixelFormat.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB8:
		return "rgb8"
	case FormatGray8:
		return "gray8"
	default:
		return "unknown"
	}
}

// ParsePixelFormat maps "rgb8" or "gray8" to a PixelFormat.
func ParsePixelFormat(s string) (PixelFormat, error) {
	switch s {
	case "rgb8":
		return FormatRGB8, nil
	case "gray8":
		return FormatGray8, nil
	default:
		return 0, &FormatError{Name: s}
	}
}

type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionRLE  Compression = 1
)

func (c Compression) Valid() bool {
	return c == CompressionNone || c == CompressionRLE
}

// Name returns the human-readable compression name, or "" if unknown.
func (c Compression) Name() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionRLE:
		return "run-length encoding compressed"
	default:
		return ""
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionRLE:
		return "rle"
	default:
		return "unknown"
	}
}
