package aif

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mustImage(t *testing.T, format PixelFormat, w, h uint32, pixels []byte) *Image {
	t.Helper()
	img, err := NewImage(format, w, h, pixels)
	if err != nil {
		t.Fatalf("new image: %v", err)
	}
	return img
}

func TestEncodeConcreteRLEFile(t *testing.T) {
	t.Parallel()

	img := mustImage(t, FormatRGB8, 2, 1, []byte{10, 10, 10, 10, 10, 10})
	if err := img.SetCompression(CompressionRLE); err != nil {
		t.Fatalf("set compression: %v", err)
	}
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(data) != HeaderSize+6 {
		t.Fatalf("file size: got %d want %d", len(data), HeaderSize+6)
	}
	if !bytes.Equal(data[HeaderSize:], []byte{0x04, 0x00, 2, 10, 10, 10}) {
		t.Fatalf("body: got %v", data[HeaderSize:])
	}

	h, _ := DecodeHeader(data)
	if h.Checksum != Checksum(data) {
		t.Fatalf("stored checksum %#04x, recomputed %#04x", h.Checksum, Checksum(data))
	}
	if img.Header.Checksum != h.Checksum {
		t.Fatalf("image header checksum not updated: %#04x", img.Header.Checksum)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, format := range []PixelFormat{FormatRGB8, FormatGray8} {
		for _, c := range []Compression{CompressionNone, CompressionRLE} {
			pixels := gradientPixels(37, 5, format.BytesPerPixel())
			img := mustImage(t, format, 37, 5, append([]byte(nil), pixels...))
			if err := img.SetCompression(c); err != nil {
				t.Fatalf("set compression: %v", err)
			}

			data, err := Encode(img)
			if err != nil {
				t.Fatalf("%v/%v: encode: %v", format, c, err)
			}
			f, err := Parse(data)
			if err != nil {
				t.Fatalf("%v/%v: parse: %v", format, c, err)
			}
			if r := f.Report(); !r.ChecksumOK || !r.Validation.Valid() {
				t.Fatalf("%v/%v: report %+v", format, c, r)
			}

			got, err := Decode(data)
			if err != nil {
				t.Fatalf("%v/%v: decode: %v", format, c, err)
			}
			if got.Header.Compression != c || got.Header.PixelFormat != format {
				t.Fatalf("%v/%v: header %+v", format, c, got.Header)
			}
			if !bytes.Equal(got.Pixels, pixels) {
				t.Fatalf("%v/%v: pixel mismatch", format, c)
			}
		}
	}
}

func TestConvertRewritesFormatByte(t *testing.T) {
	t.Parallel()

	img := mustImage(t, FormatGray8, 3, 1, []byte{0, 128, 255})
	if err := img.Convert(FormatRGB8); err != nil {
		t.Fatalf("convert: %v", err)
	}
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if data[6] != byte(FormatRGB8) {
		t.Fatalf("format byte: got %d", data[6])
	}
	if len(data) != HeaderSize+9 {
		t.Fatalf("file size: got %d", len(data))
	}

	if err := img.Convert(FormatRGB8); err != nil {
		t.Fatalf("same-format convert: %v", err)
	}
	if img.Header.PixelFormat != FormatRGB8 || len(img.Pixels) != 9 {
		t.Fatalf("same-format convert changed the image: %+v", img.Header)
	}
}

func TestDecodeRejectsInvalidHeader(t *testing.T) {
	t.Parallel()

	img := mustImage(t, FormatGray8, 2, 2, []byte{1, 2, 3, 4})
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	bad := append([]byte(nil), data...)
	bad[0] = 'X'
	bad[7] = 5
	_, err = Decode(bad)
	if !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile, got %v", err)
	}
	var he *HeaderError
	if !errors.As(err, &he) || len(he.Fields) != 2 {
		t.Fatalf("expected two failing fields, got %v", err)
	}

	// The info path still reads every field.
	f, err := Parse(bad)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := f.Report()
	if r.Validation.MagicOK || r.Validation.CompressionOK {
		t.Fatalf("expected magic and compression to fail: %+v", r.Validation)
	}
	if !r.Validation.FormatOK || !r.Validation.WidthOK || !r.Validation.HeightOK {
		t.Fatalf("unrelated fields reported invalid: %+v", r.Validation)
	}
	if r.ChecksumOK {
		t.Fatalf("expected checksum mismatch after editing bytes")
	}
	if r.StoredChecksum != img.Header.Checksum {
		t.Fatalf("stored checksum: got %#04x want %#04x", r.StoredChecksum, img.Header.Checksum)
	}
}

// fileWithHeader builds a file from an unchecked header and body, with a
// valid checksum.
func fileWithHeader(h Header, body []byte) []byte {
	data := make([]byte, HeaderSize+len(body))
	EncodeHeader(data, h)
	copy(data[HeaderSize:], body)
	Stamp(data)
	return data
}

func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	img := mustImage(t, FormatRGB8, 2, 2, make([]byte, 12))
	full, err := Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "short body", data: full[:len(full)-1]},
		{name: "short header", data: full[:HeaderSize-1]},
		{name: "raw gray max dimensions",
			data: fileWithHeader(NewHeader(FormatGray8, CompressionNone, 0xFFFFFFFF, 0xFFFFFFFF), nil)},
		{name: "raw rgb 4Mi square",
			data: fileWithHeader(NewHeader(FormatRGB8, CompressionNone, 1<<22, 1<<22), []byte{1, 2, 3})},
		{name: "rle gray 2^31 square",
			data: fileWithHeader(NewHeader(FormatGray8, CompressionRLE, 1<<31, 1<<31), nil)},
		{name: "rle rgb 4Mi square",
			data: fileWithHeader(NewHeader(FormatRGB8, CompressionRLE, 1<<22, 1<<22), []byte{2, 0, 1, 7})},
		{name: "rle more rows than body",
			data: fileWithHeader(NewHeader(FormatGray8, CompressionRLE, 1, 10), []byte{2, 0, 1, 7, 2, 0, 1, 7})},
		{name: "rle rows too short for width",
			data: fileWithHeader(NewHeader(FormatGray8, CompressionRLE, 1000, 1), []byte{4, 0, 255, 7, 255, 7})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Decode(tt.data); !errors.Is(err, ErrTruncated) {
				t.Fatalf("expected ErrTruncated, got %v", err)
			}
		})
	}
}

func TestWriterLifecycle(t *testing.T) {
	t.Parallel()

	m := &memFile{}
	w, err := NewWriter(m, NewHeader(FormatGray8, CompressionNone, 2, 1))
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if _, err := w.Finalise(); err == nil {
		t.Fatalf("expected finalise before pixels to fail")
	}
	if err := w.WritePixels([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected wrong-size pixel buffer to fail")
	}
	if err := w.WritePixels([]byte{1, 2}); err != nil {
		t.Fatalf("write pixels: %v", err)
	}
	if err := w.WritePixels([]byte{1, 2}); err == nil {
		t.Fatalf("expected second WritePixels to fail")
	}
	if w.Written() != HeaderSize+2 {
		t.Fatalf("written: got %d want %d", w.Written(), HeaderSize+2)
	}
	if _, err := NewWriter(m, NewHeader(FormatGray8, CompressionNone, 0, 1)); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile for zero width, got %v", err)
	}
	if _, err := NewWriter(nil, NewHeader(FormatGray8, CompressionNone, 1, 1)); err == nil {
		t.Fatalf("expected nil destination to fail")
	}
}

func TestWriterFinalisePatchesOnlyChecksum(t *testing.T) {
	t.Parallel()

	m := &memFile{}
	h := NewHeader(FormatGray8, CompressionNone, 3, 1)
	h.Checksum = 0xFFFF
	w, err := NewWriter(m, h)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := w.WritePixels([]byte{7, 8, 9}); err != nil {
		t.Fatalf("write pixels: %v", err)
	}
	before := append([]byte(nil), m.buf...)
	if before[4] != 0 || before[5] != 0 {
		t.Fatalf("provisional checksum not zeroed: %x", before[4:6])
	}

	sum, err := w.Finalise()
	if err != nil {
		t.Fatalf("finalise: %v", err)
	}
	for i := range before {
		if i == 4 || i == 5 {
			continue
		}
		if m.buf[i] != before[i] {
			t.Fatalf("byte %d changed during finalise", i)
		}
	}
	if sum != Checksum(m.buf) {
		t.Fatalf("finalised %#04x, recomputed %#04x", sum, Checksum(m.buf))
	}
	if w.Header().Checksum != sum {
		t.Fatalf("writer header checksum not updated")
	}
	if _, err := w.Finalise(); err == nil {
		t.Fatalf("expected second finalise to fail")
	}
}

func TestWriteFileAndOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "out.aif")

	// A longer stale file at the destination must be fully replaced.
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, 4096), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	img := mustImage(t, FormatRGB8, 30, 4, gradientPixels(30, 4, 3))
	if err := img.SetCompression(CompressionRLE); err != nil {
		t.Fatalf("set compression: %v", err)
	}
	n, err := WriteFile(path, img)
	if err != nil {
		t.Fatalf("write file: %v", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() != n {
		t.Fatalf("size: wrote %d, file has %d", n, st.Size())
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(ents) != 1 {
		t.Fatalf("expected only the output file, found %d entries", len(ents))
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()
	if r := f.Report(); !r.ChecksumOK {
		t.Fatalf("checksum mismatch: stored %#04x computed %#04x", r.StoredChecksum, r.ComputedChecksum)
	}
	got, err := f.Image()
	if err != nil {
		t.Fatalf("image: %v", err)
	}
	if !bytes.Equal(got.Pixels, img.Pixels) {
		t.Fatalf("pixels mismatch after reopen")
	}
}

func TestWriteFileMissingDirectory(t *testing.T) {
	t.Parallel()

	img := mustImage(t, FormatGray8, 1, 1, []byte{1})
	_, err := WriteFile(filepath.Join(t.TempDir(), "missing", "out.aif"), img)
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("expected ErrWrite, got %v", err)
	}
}

func TestWriteFileInvalidImageLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	img := mustImage(t, FormatGray8, 1, 1, []byte{1})
	img.Header.Width = 0
	if _, err := WriteFile(filepath.Join(dir, "out.aif"), img); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("expected ErrInvalidFile, got %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(ents) != 0 {
		t.Fatalf("expected empty directory, found %d entries", len(ents))
	}
}

func TestOpenShortFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "short.aif")
	if err := os.WriteFile(path, []byte("AIF\x00"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestOpenReaderAt(t *testing.T) {
	t.Parallel()

	img := mustImage(t, FormatGray8, 2, 1, []byte{9, 8})
	data, err := Encode(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	f, err := OpenReaderAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open readerat: %v", err)
	}
	if f.mmapped {
		t.Fatalf("OpenReaderAt should not mmap")
	}
	if f.Size() != int64(len(data)) || !bytes.Equal(f.Body(), []byte{9, 8}) {
		t.Fatalf("unexpected contents: size=%d body=%v", f.Size(), f.Body())
	}

	if _, err := OpenReaderAt(bytes.NewReader(data), int64(len(data)+5)); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for oversized read, got %v", err)
	}
}

func TestFileSize(t *testing.T) {
	t.Parallel()

	if n, err := fileSize(HeaderSize); err != nil || n != HeaderSize {
		t.Fatalf("header-sized input: got %d, %v", n, err)
	}
	if _, err := fileSize(HeaderSize - 1); !errors.Is(err, ErrTruncated) {
		t.Fatalf("short input: expected ErrTruncated, got %v", err)
	}
	_, err := fileSize(-1)
	if err == nil {
		t.Fatal("expected error for negative size")
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrTruncated) {
		t.Fatalf("negative size misreported as %v", err)
	}
}

func TestDecodeUnencodableRowWidth(t *testing.T) {
	t.Parallel()

	// Wide enough that no 65535-byte row can describe it, with a body large
	// enough to pass the size precheck.
	width := uint32(1 << 24)
	need, ok := minCompressedSize(width, 1, 3)
	if !ok {
		t.Fatal("minCompressedSize overflowed")
	}
	data := fileWithHeader(NewHeader(FormatRGB8, CompressionRLE, width, 1), make([]byte, need))
	if _, err := Decode(data); !errors.Is(err, ErrCorruptData) {
		t.Fatalf("expected ErrCorruptData, got %v", err)
	}
}
