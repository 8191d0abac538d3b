package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/snapshot"
)

// WriteJSON encodes a line as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(l *line.Line, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot.FromLine(l)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteTOML encodes a line as TOML and writes it to w.
// The output can be re-imported with [ReadTOML].
func WriteTOML(l *line.Line, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(snapshot.FromLine(l)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes a line to w in the given format.
func Write(l *line.Line, w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(l, w)
	case FormatTOML:
		return WriteTOML(l, w)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// Export writes a line to a file at path. The format is chosen by extension.
func Export(l *line.Line, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(l, f, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
