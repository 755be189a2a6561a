package export

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"

	"github.com/san-kum/kapitza/internal/analysis"
	"github.com/san-kum/kapitza/internal/viz"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

type GIFOptions struct {
	// Width and Height are the scene size in braille cells.
	Width, Height int
	// DotSize is the edge in pixels of one sub-pixel.
	DotSize int
	// Every keeps one animation frame out of Every.
	Every   int
	Length  float64
	History int
}

func DefaultGIFOptions(length float64, history int) GIFOptions {
	return GIFOptions{
		Width:   60,
		Height:  30,
		DotSize: 3,
		Every:   5,
		Length:  length,
		History: history,
	}
}

var gifPalette = color.Palette{
	color.RGBA{0x0a, 0x0a, 0x0a, 0xff},
	color.RGBA{0x00, 0xff, 0x88, 0xff},
	color.RGBA{0xe0, 0xe0, 0xe0, 0xff},
}

// labelHeight is the strip above the scene holding the time label.
const labelHeight = 16

// WriteGIF encodes the animation frame by frame with the bob trail and a
// time label. The per-frame delay plays the animation in real time, at
// least 2 hundredths of a second.
func WriteGIF(w io.Writer, anim *analysis.Animation, opts GIFOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 || opts.DotSize <= 0 {
		return fmt.Errorf("export: invalid gif size %dx%d dot %d", opts.Width, opts.Height, opts.DotSize)
	}
	if opts.Every <= 0 {
		opts.Every = 1
	}

	scene := viz.NewScene(opts.Width, opts.Height, opts.Length, opts.History)
	delay := int(math.Round(anim.FrameInterval() * float64(opts.Every) * 100))
	if delay < 2 {
		delay = 2
	}

	out := gif.GIF{LoopCount: 0}
	for i := 0; i < anim.Len(); i += opts.Every {
		f, err := anim.Frame(i)
		if err != nil {
			return err
		}
		scene.Render(f)
		out.Image = append(out.Image, rasterize(scene.Canvas, opts.DotSize, fmt.Sprintf("time = %.1fs", f.Time)))
		out.Delay = append(out.Delay, delay)
	}

	return gif.EncodeAll(w, &out)
}

func rasterize(c *viz.Canvas, dot int, label string) *image.Paletted {
	imgW, imgH := c.PixelWidth()*dot, c.PixelHeight()*dot+labelHeight
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), gifPalette)

	for y := 0; y < c.PixelHeight(); y++ {
		for x := 0; x < c.PixelWidth(); x++ {
			if !c.IsSet(x, y) {
				continue
			}
			for py := 0; py < dot; py++ {
				for px := 0; px < dot; px++ {
					img.SetColorIndex(x*dot+px, labelHeight+y*dot+py, 1)
				}
			}
		}
	}

	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(gifPalette[2]),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 13),
	}
	drawer.DrawString(label)
	return img
}
