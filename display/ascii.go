package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

var faces = [...]string{
	"-----\n|   |\n| o |\n|   |\n-----",
	"-----\n|o  |\n|   |\n|  o|\n-----",
	"-----\n|o  |\n| o |\n|  o|\n-----",
	"-----\n|o o|\n|   |\n|o o|\n-----",
	"-----\n|o o|\n| o |\n|o o|\n-----",
	"-----\n|o o|\n|o o|\n|o o|\n-----",
}

// FaceArt returns the text drawing of a die showing face.
func FaceArt(face int) (string, error) {
	if face < 1 || face > len(faces) {
		return "", fmt.Errorf("%w: no art for face %d", ErrDisplay, face)
	}
	return faces[face-1], nil
}

// ASCII prints a text drawing of the face. It needs no image assets and,
// unless Erase is set, leaves the drawing in place so it also works when
// output is not a terminal.
type ASCII struct {
	Duration time.Duration
	Out      io.Writer
	Erase    bool
}

func NewASCII(duration time.Duration, out io.Writer) *ASCII {
	return &ASCII{Duration: duration, Out: out}
}

func (a *ASCII) Show(ctx context.Context, face int) error {
	art, err := FaceArt(face)
	if err != nil {
		return err
	}

	fr := &frame{}
	fr.printf(title, face)
	fr.printf("%s\n", art)

	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	return show(ctx, out, fr, viewport{duration: a.Duration, erase: a.Erase})
}
