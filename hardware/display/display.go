// Package display renders text frames for the LCD panel. The panel is an
// opaque raster sink: the menu core draws a full bitmap and flushes it.
package display

import (
	"image"
	"image/color"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cydrysdale/pwnagotchi/hardware/display/framebuffer"
)

var (
	Black  = color.RGBA{0x00, 0x00, 0x00, 0xff}
	White  = color.RGBA{0xff, 0xff, 0xff, 0xff}
	Green  = color.RGBA{0xc8, 0xff, 0xc8, 0xff}
	DimGrn = color.RGBA{0xa0, 0xc8, 0xa0, 0xff}
)

// LineStep is the vertical advance between text lines.
const LineStep = 18

type Display struct {
	fb   *framebuffer.Framebuffer
	pix  []color.RGBA
	size image.Point
}

func NewFb(dev string) (*Display, error) {
	fb, err := framebuffer.New(dev)
	if err != nil {
		return nil, errors.Annotatef(err, "framebuffer device=%s", dev)
	}
	size := fb.Size()
	d := &Display{
		fb:   fb,
		pix:  make([]color.RGBA, size.X*size.Y),
		size: size,
	}
	return d, nil
}

func NewMock(size image.Point) *Display {
	return &Display{
		pix:  make([]color.RGBA, size.X*size.Y),
		size: size,
	}
}

func (d *Display) Size() image.Point { return d.size }
func (d *Display) Width() int        { return d.size.X }
func (d *Display) Height() int       { return d.size.Y }

func (d *Display) Fill(c color.RGBA) {
	for i := range d.pix {
		d.pix[i] = c
	}
}

func (d *Display) Clear() error {
	d.Fill(Black)
	return d.Flush()
}

// Text draws s with the top-left corner at (x, y).
func (d *Display) Text(x, y int, s string, c color.RGBA) {
	face := basicfont.Face7x13
	dr := font.Drawer{
		Dst:  (*pixImage)(d),
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Ascent),
	}
	dr.DrawString(s)
}

func (d *Display) Flush() error {
	if d.fb != nil {
		if err := d.fb.Update(d.pix); err != nil {
			return err
		}
		return d.fb.Flush()
	}
	return nil
}

func (d *Display) Close() {
	if d.fb != nil {
		d.fb.Close()
	}
}

// String renders the buffer as text, for tests and the dev harness.
func (d *Display) String() string {
	b := strings.Builder{}
	b.Grow((d.size.X + 1) * d.size.Y)
	for y := 0; y < d.size.Y; y++ {
		for x := 0; x < d.size.X; x++ {
			c := d.get(x, y)
			if c.R == 0 && c.G == 0 && c.B == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('#')
			}
		}
		b.WriteRune('\n')
	}
	return b.String()
}

// Lit reports whether any pixel in rows [y0, y1) is not black.
func (d *Display) Lit(y0, y1 int) bool {
	if y0 < 0 {
		y0 = 0
	}
	if y1 > d.size.Y {
		y1 = d.size.Y
	}
	for y := y0; y < y1; y++ {
		for x := 0; x < d.size.X; x++ {
			c := d.get(x, y)
			if c.R != 0 || c.G != 0 || c.B != 0 {
				return true
			}
		}
	}
	return false
}

func (d *Display) get(x, y int) color.RGBA    { return d.pix[y*d.size.X+x] }
func (d *Display) set(x, y int, c color.RGBA) { d.pix[y*d.size.X+x] = c }

// pixImage adapts the pixel buffer to draw.Image for the font rasterizer.
type pixImage Display

func (p *pixImage) ColorModel() color.Model { return color.RGBAModel }
func (p *pixImage) Bounds() image.Rectangle { return image.Rectangle{Max: p.size} }
func (p *pixImage) At(x, y int) color.Color { return (*Display)(p).get(x, y) }

func (p *pixImage) Set(x, y int, c color.Color) {
	if x < 0 || y < 0 || x >= p.size.X || y >= p.size.Y {
		return
	}
	r, g, b, a := c.RGBA()
	(*Display)(p).set(x, y, color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), uint8(a >> 8)})
}
