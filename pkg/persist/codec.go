// Package persist writes snapshots of a folded contour tree to disk with a
// pluggable codec.
package persist

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Codec formats.
const (
	FormatJSON = "json"
	FormatGob  = "gob"
)

const defaultIndent = "  "

// ErrUnknownFormat is returned by CodecFor for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Codec serializes a state value.
type Codec interface {
	Encode(w io.Writer, state any) error
	Decode(r io.Reader, state any) error
	// Extension is the file extension including the leading dot.
	Extension() string
}

// JSONCodec encodes state as JSON. An empty Indent writes compact JSON.
type JSONCodec struct {
	Indent string
}

// NewJSONCodec creates a pretty-printing JSON codec.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", c.Indent)

	if err := encoder.Encode(state); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	if err := json.NewDecoder(r).Decode(state); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *JSONCodec) Extension() string { return "." + FormatJSON }

// GobCodec encodes state with encoding/gob.
type GobCodec struct{}

// NewGobCodec creates a gob codec.
func NewGobCodec() *GobCodec { return &GobCodec{} }

// Encode implements Codec.
func (c *GobCodec) Encode(w io.Writer, state any) error {
	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *GobCodec) Decode(r io.Reader, state any) error {
	if err := gob.NewDecoder(r).Decode(state); err != nil {
		return fmt.Errorf("gob decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *GobCodec) Extension() string { return "." + FormatGob }

// CodecFor returns the codec for a format name, wrapped in LZ4 framing when
// compress is set.
func CodecFor(format string, compress bool) (Codec, error) {
	var codec Codec

	switch format {
	case FormatJSON:
		codec = NewJSONCodec()
	case FormatGob:
		codec = NewGobCodec()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if compress {
		codec = NewLZ4Codec(codec)
	}

	return codec, nil
}

// SaveState writes state to dir/basename plus the codec's extension and
// returns the path written.
func SaveState(dir, basename string, codec Codec, state any) (string, error) {
	path := filepath.Join(dir, basename+codec.Extension())

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create state file: %w", err)
	}
	defer file.Close()

	if err := codec.Encode(file, state); err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	return path, nil
}

// LoadState reads dir/basename plus the codec's extension into state, which
// must be a pointer.
func LoadState(dir, basename string, codec Codec, state any) error {
	file, err := os.Open(filepath.Join(dir, basename+codec.Extension()))
	if err != nil {
		return fmt.Errorf("open state file: %w", err)
	}
	defer file.Close()

	if err := codec.Decode(file, state); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	return nil
}
