// Package display shows the image for a rolled face for a short time and
// then dismisses it.
package display

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rlindsey28/dice-roller/assets"
	"github.com/rlindsey28/dice-roller/clock"
	"github.com/rlindsey28/dice-roller/config"
	"github.com/rlindsey28/dice-roller/logger"
	"github.com/rlindsey28/dice-roller/rolldice"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// ErrDisplay indicates the image could not be decoded or rendered.
var ErrDisplay = errors.New("display failed")

const title = " Dice Roll: %d\n"

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// terminalSize returns the column and line counts of w, or zeros when
// unknown.
func terminalSize(w io.Writer) (cols, rows int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, 0
	}
	cols, rows, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0
	}
	return cols, rows
}

// frame is one rendered view. Every line it holds ends in a newline.
type frame struct {
	buf bytes.Buffer
}

func (f *frame) printf(format string, args ...any) {
	fmt.Fprintf(&f.buf, format, args...)
}

func (f *frame) lines() int {
	return bytes.Count(f.buf.Bytes(), []byte{'\n'})
}

// show writes fr to out, holds it for the viewport duration and, when erase
// is set, clears it again.
func show(ctx context.Context, out io.Writer, fr *frame, v viewport) error {
	if _, err := out.Write(fr.buf.Bytes()); err != nil {
		return fmt.Errorf("%w: write frame: %w", ErrDisplay, err)
	}
	clock.Sleep(ctx, v.duration)
	if !v.erase {
		return nil
	}
	// Move to the first line of the frame and clear to the end of screen.
	if _, err := fmt.Fprintf(out, "\x1b[%dF\x1b[J", fr.lines()); err != nil {
		return fmt.Errorf("%w: dismiss frame: %w", ErrDisplay, err)
	}
	logger.FromCtx(ctx).Debug("dismissed frame", zap.Int("lines", fr.lines()))
	return nil
}

type viewport struct {
	duration time.Duration
	erase    bool
}

// New returns the presenter for the configured mode, or nil when display is
// disabled. Auto mode renders images on a terminal and falls back to ASCII
// art otherwise.
func New(conf config.DisplayConfig, resolver assets.Resolver, out io.Writer) rolldice.ImagePresenter {
	switch conf.Mode {
	case config.DisplayNone:
		return nil
	case config.DisplayASCII:
		return NewASCII(conf.Duration, out)
	case config.DisplayTerminal:
		return NewTerminal(resolver, conf.Duration, out)
	}
	if IsTerminal(out) {
		return NewTerminal(resolver, conf.Duration, out)
	}
	return NewASCII(conf.Duration, out)
}

// UsesImages reports whether p reads the face images from the asset
// directory.
func UsesImages(p rolldice.ImagePresenter) bool {
	_, ok := p.(*Terminal)
	return ok
}
