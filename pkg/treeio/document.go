// Package treeio reads and writes scalar complexes and contour trees as YAML
// or JSON documents.
package treeio

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document kinds.
const (
	KindComplex     = "complex"
	KindContourTree = "contour_tree"
)

// Document formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// ErrUnknownFormat is returned for a format or file extension other than
// YAML or JSON.
var ErrUnknownFormat = errors.New("unknown document format")

// NodeSpec is one vertex or contour tree node.
type NodeSpec struct {
	ID    int     `json:"id"    yaml:"id"`
	Value float64 `json:"value" yaml:"value"`
}

// EdgeMembers lists the vertex IDs in the interior of the arc between U and V.
type EdgeMembers struct {
	U       int   `json:"u"       yaml:"u"`
	V       int   `json:"v"       yaml:"v"`
	Members []int `json:"members" yaml:"members"`
}

// MemberSpec overrides the default members of a contour tree. Nodes are keyed
// by decimal node ID.
type MemberSpec struct {
	Nodes map[string][]int `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges []EdgeMembers    `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Document is a complex or a contour tree with scalar values per node.
type Document struct {
	Kind    string      `json:"kind"              yaml:"kind"`
	Nodes   []NodeSpec  `json:"nodes"             yaml:"nodes"`
	Edges   [][2]int    `json:"edges,omitempty"   yaml:"edges,omitempty"`
	Members *MemberSpec `json:"members,omitempty" yaml:"members,omitempty"`
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

// Load reads, decodes and validates the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	doc, err := Decode(file, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}

// Decode reads one document in format and validates it.
func Decode(r io.Reader, format string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return DecodeBytes(data, format)
}

// DecodeBytes checks data against the document schema, decodes it and checks
// the references between its nodes, edges and members.
func DecodeBytes(data []byte, format string) (*Document, error) {
	if err := validateRaw(data, format); err != nil {
		return nil, err
	}

	var doc Document

	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)

		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrInvalidDocument, err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrInvalidDocument, err)
		}
	}

	if err := checkReferences(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// Encode writes doc in format.
func Encode(w io.Writer, doc *Document, format string) error {
	switch format {
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)

		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}

		if err := encoder.Close(); err != nil {
			return fmt.Errorf("yaml encode: %w", err)
		}
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	return nil
}
