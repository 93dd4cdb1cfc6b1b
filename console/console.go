// Package console is the interactive text surface of the dice roller.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rlindsey28/dice-roller/assets"
	"github.com/rlindsey28/dice-roller/rolldice"
)

const (
	Banner       = " Welcome to Console Dice Roller!"
	Prompt       = "Enter the number of dice to roll: "
	Credits      = "Created by Vaishnavee and Kratika "
	InvalidCount = "Invalid number of dice. Please enter a number greater than 0."
	InvalidInput = "Invalid input. Please enter a whole number."
)

// ErrInvalidInput indicates the entered text is not a whole number.
var ErrInvalidInput = errors.New("input is not a whole number")

// ReadDiceCount reads the first whitespace-separated token from r and parses
// it as an integer.
func ReadDiceCount(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return 0, fmt.Errorf("read dice count: %w", err)
		}
		return 0, fmt.Errorf("%w: no input", ErrInvalidInput)
	}
	token := scanner.Text()
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInput, token)
	}
	return n, nil
}

// Printer writes the session's user-facing text. It implements
// rolldice.Notifier.
type Printer struct {
	Out      io.Writer
	Resolver assets.Resolver
}

var _ rolldice.Notifier = (*Printer)(nil)

func NewPrinter(out io.Writer, resolver assets.Resolver) *Printer {
	return &Printer{Out: out, Resolver: resolver}
}

func (p *Printer) Banner() {
	fmt.Fprintln(p.Out, Banner)
}

func (p *Printer) Prompt() {
	fmt.Fprint(p.Out, Prompt)
}

func (p *Printer) Total(total int) {
	fmt.Fprintf(p.Out, "Total of dice rolled: %d\n", total)
}

func (p *Printer) Credits() {
	fmt.Fprintln(p.Out, Credits)
}

func (p *Printer) InputError(err error) {
	if errors.Is(err, ErrInvalidInput) {
		fmt.Fprintln(p.Out, InvalidInput)
		return
	}
	fmt.Fprintf(p.Out, "Could not read input: %v\n", err)
}

func (p *Printer) Rolled(_, face, _ int) {
	fmt.Fprintf(p.Out, "You rolled: %d\n", face)
}

func (p *Printer) Rejected(int, error) {
	fmt.Fprintln(p.Out, InvalidCount)
}

// EffectFailed reports a failed sound or image as a one-line diagnostic.
func (p *Printer) EffectFailed(f rolldice.Failure) {
	missing := errors.Is(f.Err, assets.ErrMissing)
	switch {
	case f.Effect == rolldice.EffectSound && missing:
		fmt.Fprintf(p.Out, "Sound file not found: %s\n", p.Resolver.SoundPath(f.Face))
	case f.Effect == rolldice.EffectSound:
		fmt.Fprintf(p.Out, "Error playing sound: %v\n", f.Err)
	case f.Effect == rolldice.EffectImage && missing:
		fmt.Fprintf(p.Out, " Image file not found: %s\n", p.Resolver.ImagePath(f.Face))
	default:
		fmt.Fprintf(p.Out, " Error showing dice image for roll %d: %v\n", f.Face, f.Err)
	}
}
