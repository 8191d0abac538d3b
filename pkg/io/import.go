package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// Format is a line file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported line file extension %q (want .json or .toml)", filepath.Ext(path))
	}
}

// ReadJSON decodes a JSON line file from r and rebuilds the line.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*line.Line, error) {
	var s snapshot.Line
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return s.ToLine()
}

// ReadTOML decodes a TOML line file from r and rebuilds the line.
// Keys that do not belong to the line format are rejected.
// ReadTOML does not close r.
func ReadTOML(r io.Reader) (*line.Line, error) {
	var s snapshot.Line
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("decode: unknown key %q", undecoded[0].String())
	}
	return s.ToLine()
}

// Read decodes a line from r in the given format.
func Read(r io.Reader, format Format) (*line.Line, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// Import reads the line file at path. The format is chosen by extension.
func Import(path string) (*line.Line, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	l, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}
