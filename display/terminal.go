package display

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"os"
	"time"

	"github.com/rlindsey28/dice-roller/assets"
	"github.com/rlindsey28/dice-roller/logger"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	// MaxWidth caps the rendered image width in columns.
	MaxWidth      = 48
	defaultWidth  = 32
	defaultHeight = 24
)

// Terminal renders the face image inline using 24-bit color half blocks,
// two pixel rows per text line, then erases it after Duration.
type Terminal struct {
	Resolver assets.Resolver
	Duration time.Duration
	Out      io.Writer
	// Width is the image width in columns. Zero sizes it from Out.
	Width int
	// Height is the terminal height in lines. Zero sizes it from Out.
	Height int
}

func NewTerminal(resolver assets.Resolver, duration time.Duration, out io.Writer) *Terminal {
	return &Terminal{Resolver: resolver, Duration: duration, Out: out}
}

func (t *Terminal) Show(ctx context.Context, face int) error {
	path := t.Resolver.ImagePath(face)
	if err := assets.Check(path); err != nil {
		return err
	}
	img, err := decode(path)
	if err != nil {
		return err
	}

	cols, maxRows := t.size()
	scaled := scale(img, fit(img.Bounds(), cols, maxRows))
	fr := &frame{}
	fr.printf(title, face)
	renderHalfBlocks(fr, scaled)

	logger.FromCtx(ctx).Debug("showing image",
		zap.String("path", path),
		zap.Int("face", face),
		zap.Int("columns", scaled.Bounds().Dx()))
	return show(ctx, t.out(), fr, viewport{duration: t.Duration, erase: true})
}

func (t *Terminal) out() io.Writer {
	if t.Out == nil {
		return os.Stdout
	}
	return t.Out
}

// size returns the widest image in columns and the tallest in pixel rows
// that fit on screen. The frame keeps one line for the title and one for the
// cursor, so erasing it never has to reach above the top of the screen.
func (t *Terminal) size() (cols, pixelRows int) {
	cols, rows := t.Width, t.Height
	if cols <= 0 || rows <= 0 {
		c, r := terminalSize(t.out())
		if cols <= 0 {
			cols = c
		}
		if rows <= 0 {
			rows = r
		}
	}
	if cols <= 0 {
		cols = defaultWidth
	}
	if rows <= 0 {
		rows = defaultHeight
	}
	return min(cols, MaxWidth), max(2, 2*(rows-2))
}

// fit returns the column count that keeps an image of the given bounds
// within cols columns and maxRows pixel rows at its aspect ratio.
func fit(bounds image.Rectangle, cols, maxRows int) int {
	if bounds.Dx() <= 0 || bounds.Dy()*cols/bounds.Dx() <= maxRows {
		return cols
	}
	return max(1, maxRows*bounds.Dx()/bounds.Dy())
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDisplay, path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrDisplay, path, err)
	}
	return img, nil
}

// scale resizes img to cols pixels wide over a black background, keeping the
// aspect ratio. The height is rounded up to an even number of pixels.
func scale(img image.Image, cols int) *image.RGBA {
	src := img.Bounds()
	rows := 2
	if src.Dx() > 0 {
		rows = max(2, src.Dy()*cols/src.Dx())
	}
	rows += rows % 2

	dst := image.NewRGBA(image.Rect(0, 0, cols, rows))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

// renderHalfBlocks draws img using the upper half block glyph, foreground for
// the top pixel and background for the bottom pixel.
func renderHalfBlocks(fr *frame, img *image.RGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := img.RGBAAt(x, y)
			bottom := img.RGBAAt(x, y+1)
			fmt.Fprintf(&fr.buf, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		fr.printf("\x1b[0m\n")
	}
}
