package aif

import (
	"bytes"
	"fmt"
)

// Compressed rows are a sequence of tag blocks:
//
//	repeat:  [n 1..255][pixel]            n copies of one pixel
//	literal: [0][m 1..255][m pixels]      m pixels verbatim

// AppendRow compresses one row of width pixels and appends the tag blocks
// to dst. Runs of two or more identical pixels become repeat blocks; all
// other pixels are gathered into literal blocks.
func AppendRow(dst, row []byte, width, bpp int) []byte {
	col := 0
	for col < width {
		run := runLength(row, width, bpp, col)
		if run >= 2 {
			dst = appendRepeat(dst, row[col*bpp:(col+1)*bpp], run)
			col += run
			continue
		}

		// Gather literals until the next run or the end of the row.
		start := col
		col++
		for col < width && runLength(row, width, bpp, col) < 2 {
			col++
		}
		dst = appendLiteral(dst, row[start*bpp:col*bpp], col-start, bpp)
	}
	return dst
}

// MaxRowSize is the worst-case compressed size of a row: single-pixel
// literal blocks, each carrying two bytes of overhead.
func MaxRowSize(width, bpp int) int {
	return width * (bpp + 2)
}

// runLength measures the run of identical pixels starting at col.
func runLength(row []byte, width, bpp, col int) int {
	px := row[col*bpp : (col+1)*bpp]
	run := 1
	for col+run < width {
		off := (col + run) * bpp
		if !bytes.Equal(px, row[off:off+bpp]) {
			break
		}
		run++
	}
	return run
}

func appendRepeat(dst, px []byte, run int) []byte {
	for run > 0 {
		n := min(run, maxBlockPixels)
		dst = append(dst, byte(n))
		dst = append(dst, px...)
		run -= n
	}
	return dst
}

func appendLiteral(dst, pixels []byte, count, bpp int) []byte {
	for count > 0 {
		n := min(count, maxBlockPixels)
		dst = append(dst, 0, byte(n))
		dst = append(dst, pixels[:n*bpp]...)
		pixels = pixels[n*bpp:]
		count -= n
	}
	return dst
}

// DecodeRow expands one compressed row into out, which must be exactly one
// decoded row long. Decoding stops once out is full and any bytes left in
// comp are ignored. A short row, a block that overruns the row, or a block
// cut off by the end of comp is corrupt.
func DecodeRow(comp, out []byte, bpp int) error {
	d := rowDecoder{src: comp, dst: out, bpp: bpp}
	for d.dp < len(d.dst) && d.sp < len(d.src) {
		tag := d.src[d.sp]
		d.sp++

		var err error
		if tag != 0 {
			err = d.repeat(int(tag))
		} else {
			err = d.literal()
		}
		if err != nil {
			return err
		}
	}
	if d.dp != len(d.dst) {
		return fmt.Errorf("%w: row holds %d of %d bytes", ErrCorruptData, d.dp, len(d.dst))
	}
	return nil
}

// rowDecoder carries the read cursor over the compressed row and the write
// cursor over the output row.
type rowDecoder struct {
	src []byte
	dst []byte
	sp  int
	dp  int
	bpp int
}

func (d *rowDecoder) repeat(count int) error {
	if d.sp+d.bpp > len(d.src) {
		return fmt.Errorf("%w: repeat block at %d cut short", ErrCorruptData, d.sp-1)
	}
	px := d.src[d.sp : d.sp+d.bpp]
	d.sp += d.bpp

	need := count * d.bpp
	if d.dp+need > len(d.dst) {
		return fmt.Errorf("%w: repeat block at %d overruns row", ErrCorruptData, d.sp-d.bpp-1)
	}
	for range count {
		d.dp += copy(d.dst[d.dp:], px)
	}
	return nil
}

func (d *rowDecoder) literal() error {
	if d.sp >= len(d.src) {
		return fmt.Errorf("%w: literal block at %d has no count", ErrCorruptData, d.sp-1)
	}
	count := int(d.src[d.sp])
	d.sp++
	if count == 0 {
		return fmt.Errorf("%w: empty literal block at %d", ErrCorruptData, d.sp-2)
	}

	need := count * d.bpp
	if d.sp+need > len(d.src) {
		return fmt.Errorf("%w: literal block at %d cut short", ErrCorruptData, d.sp-2)
	}
	if d.dp+need > len(d.dst) {
		return fmt.Errorf("%w: literal block at %d overruns row", ErrCorruptData, d.sp-2)
	}
	d.dp += copy(d.dst[d.dp:], d.src[d.sp:d.sp+need])
	d.sp += need
	return nil
}
