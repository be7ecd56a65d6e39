package score

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrFormat is returned for song files with an unrecognized extension.
var ErrFormat = errors.New("unknown song format")

// Song is a set of channel scores plus the subroutine table they share.
type Song struct {
	Name        string
	Channels    []*Score
	Subroutines [NumSubroutines]*Score
}

// ReadFile loads a song from disk. Text assembly uses ".sss", raw score
// bytes use ".bin" and load as a single-channel song. Other formats are
// handled by their own packages.
func ReadFile(path string) (*Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading song: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sss", ".txt":
		song, err := Assemble(string(data))
		if err != nil {
			return nil, fmt.Errorf("error assembling %s: %w", path, err)
		}
		song.Name = name
		return song, nil
	case ".bin":
		return &Song{Name: name, Channels: []*Score{Decode(data)}}, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrFormat)
}
