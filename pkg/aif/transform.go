package aif

import "fmt"

// Brighten adjusts pixels in place by amount percent (-100..100).
//
// Gray8 bytes are scaled directly. RGB8 pixels are shifted as a whole so the
// spread between channels, and with it the hue, stays put while the
// luminance is scaled.
func Brighten(pixels []byte, format PixelFormat, amount int) error {
	if amount < -100 || amount > 100 {
		return fmt.Errorf("%w: got %d", ErrAmountRange, amount)
	}
	switch format {
	case FormatGray8:
		for i, v := range pixels {
			pixels[i] = brightenGray(v, amount)
		}
	case FormatRGB8:
		for i := 0; i+2 < len(pixels); i += 3 {
			pixels[i], pixels[i+1], pixels[i+2] = BrightenRGB(pixels[i], pixels[i+1], pixels[i+2], amount)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownFormat, format)
	}
	return nil
}

func brightenGray(v byte, amount int) byte {
	x := int(v)
	return clampByte(x + x*amount/100)
}

// BrightenRGB applies the luminance/chroma brightness model to one pixel.
// The float arithmetic follows a fixed order so output bytes are
// reproducible.
func BrightenRGB(r, g, b byte, amount int) (byte, byte, byte) {
	hi := max(r, g, b)
	lo := min(r, g, b)

	luminance := (float64(int(hi)+int(lo)) / 255.0) / 2
	chroma := float64(int(hi)-int(lo)) / 255.0 * 2

	// m = L - C/2, before and after scaling L
	base := luminance - chroma/2
	luminance *= 1.0 + float64(amount)/100.0
	adjusted := luminance - chroma/2

	shift := func(c byte) byte {
		v := int(((float64(c)/255.0 - base) + adjusted) * 255.0)
		return clampByte(v)
	}
	return shift(r), shift(g), shift(b)
}

func clampByte(v int) byte {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return byte(v)
}

// ConvertPixels returns pixels converted from one format to another. A
// same-format conversion returns a copy.
func ConvertPixels(pixels []byte, from, to PixelFormat) ([]byte, error) {
	if !from.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, from)
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, to)
	}

	switch {
	case from == to:
		out := make([]byte, len(pixels))
		copy(out, pixels)
		return out, nil
	case from == FormatRGB8 && to == FormatGray8:
		out := make([]byte, len(pixels)/3)
		for j := range out {
			i := j * 3
			out[j] = Luma(pixels[i], pixels[i+1], pixels[i+2])
		}
		return out, nil
	default:
		out := make([]byte, len(pixels)*3)
		for i, v := range pixels {
			out[i*3], out[i*3+1], out[i*3+2] = v, v, v
		}
		return out, nil
	}
}

// Luma is the integer Rec. 601 luma of an RGB pixel.
func Luma(r, g, b byte) byte {
	return byte((int(r)*299 + int(g)*587 + int(b)*114) / 1000)
}
