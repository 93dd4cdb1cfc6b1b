// Package assets resolves the on-disk media files used for each face value.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const facePlaceholder = "{face}"

// ErrMissing indicates an asset file does not exist.
var ErrMissing = errors.New("asset not found")

// Resolver maps a face value to the sound and image files for it. File names
// may contain "{face}", which is replaced by the face value.
type Resolver struct {
	Dir          string
	SoundFile    string
	ImagePattern string
}

func (r Resolver) SoundPath(face int) string {
	return r.path(r.SoundFile, face)
}

func (r Resolver) ImagePath(face int) string {
	return r.path(r.ImagePattern, face)
}

func (r Resolver) path(name string, face int) string {
	return filepath.Join(r.Dir, strings.ReplaceAll(name, facePlaceholder, strconv.Itoa(face)))
}

// All returns every distinct asset path needed for faces 1 through sides,
// sounds first.
func (r Resolver) All(sides int) []string {
	return distinct(append(r.Sounds(sides), r.Images(sides)...))
}

// Sounds returns the distinct sound paths for faces 1 through sides.
func (r Resolver) Sounds(sides int) []string {
	return r.each(sides, r.SoundPath)
}

// Images returns the distinct image paths for faces 1 through sides.
func (r Resolver) Images(sides int) []string {
	return r.each(sides, r.ImagePath)
}

func (r Resolver) each(sides int, path func(int) string) []string {
	var paths []string
	for face := 1; face <= sides; face++ {
		paths = append(paths, path(face))
	}
	return distinct(paths)
}

func distinct(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Check returns an error wrapping ErrMissing when path is absent or is a
// directory.
func Check(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissing, path)
	}
	if err != nil {
		return fmt.Errorf("stat asset %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissing, path)
	}
	return nil
}
