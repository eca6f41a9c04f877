// Package report renders the result of inspecting AIF files, either as the
// line-oriented text report or as JSON.
package report

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/aif/pkg/aif"
)

// Info is the JSON form of one inspected file.
type Info struct {
	Path          string   `json:"path"`
	Size          int64    `json:"size"`
	Valid         bool     `json:"valid"`
	InvalidFields []string `json:"invalid_fields,omitempty"`
	MagicOK       bool     `json:"magic_ok"`
	Checksum      Checksum `json:"checksum"`
	PixelFormat   Field    `json:"pixel_format"`
	Compression   Field    `json:"compression"`
	Width         Dim      `json:"width"`
	Height        Dim      `json:"height"`
}

type Checksum struct {
	Stored   string `json:"stored"`
	Computed string `json:"computed"`
	OK       bool   `json:"ok"`
}

type Field struct {
	Code  uint8  `json:"code"`
	Name  string `json:"name"`
	Valid bool   `json:"valid"`
}

type Dim struct {
	Value uint32 `json:"value"`
	Valid bool   `json:"valid"`
}

// New flattens an aif.Report for output.
func New(path string, r aif.Report) Info {
	v := r.Validation
	return Info{
		Path:          path,
		Size:          r.Size,
		Valid:         v.Valid(),
		InvalidFields: v.InvalidFields(),
		MagicOK:       v.MagicOK,
		Checksum: Checksum{
			Stored:   hex16(r.StoredChecksum),
			Computed: hex16(r.ComputedChecksum),
			OK:       r.ChecksumOK,
		},
		PixelFormat: Field{
			Code:  uint8(r.Header.PixelFormat),
			Name:  r.Header.PixelFormat.String(),
			Valid: v.FormatOK,
		},
		Compression: Field{
			Code:  uint8(r.Header.Compression),
			Name:  r.Header.Compression.String(),
			Valid: v.CompressionOK,
		},
		Width:  Dim{Value: r.Header.Width, Valid: v.WidthOK},
		Height: Dim{Value: r.Header.Height, Valid: v.HeightOK},
	}
}

// WriteText prints the report in the aif-tools info layout:
//
//	<path>:
//	File-size: 32 bytes
//	Checksum: 3a 51
//	Pixel format: 8-bit RGB
//	Compression: none
//	Width: 2 px
//	Height: 1 px
func WriteText(w io.Writer, path string, r aif.Report) error {
	v := r.Validation
	p := &printer{w: w}
	p.printf("<%s>:\n", path)
	p.printf("File-size: %d bytes\n", r.Size)
	if !v.MagicOK {
		p.printf("Invalid header magic.\n")
	}
	p.printf("Checksum: %s", hex16(r.StoredChecksum))
	if !r.ChecksumOK {
		p.printf(" INVALID, calculated %s", hex16(r.ComputedChecksum))
	}
	p.printf("\n")
	p.printf("Pixel format: %s\n", nameOrInvalid(v.FormatOK, r.Header.PixelFormat.Name()))
	p.printf("Compression: %s\n", nameOrInvalid(v.CompressionOK, r.Header.Compression.Name()))
	p.dim("Width", r.Header.Width, v.WidthOK)
	p.dim("Height", r.Header.Height, v.HeightOK)
	return p.err
}

// WriteJSON writes infos as an indented JSON array.
func WriteJSON(w io.Writer, infos []Info) error {
	if infos == nil {
		infos = []Info{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}

// hex16 formats a checksum high byte first, the way it reads as a number.
func hex16(v uint16) string {
	return fmt.Sprintf("%02x %02x", v>>8, v&0xFF)
}

func nameOrInvalid(ok bool, name string) string {
	if !ok {
		return "Invalid"
	}
	return name
}

// printer keeps the first write error so WriteText can print unconditionally.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) dim(label string, value uint32, ok bool) {
	p.printf("%s: %d px", label, value)
	if !ok {
		p.printf(" INVALID")
	}
	p.printf("\n")
}
