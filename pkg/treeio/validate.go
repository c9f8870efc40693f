package treeio

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument is wrapped by every validation failure.
var ErrInvalidDocument = errors.New("invalid document")

// SchemaJSON is the JSON schema documents are checked against.
//
//go:embed schema.json
var SchemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(SchemaJSON))
})

// ValidationError lists every problem found in a document.
type ValidationError struct {
	Problems []string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return ErrInvalidDocument.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Unwrap makes errors.Is match ErrInvalidDocument.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validate checks doc against the schema and the references between its
// parts.
func Validate(doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := validateSchema(gojsonschema.NewBytesLoader(data)); err != nil {
		return err
	}

	return checkReferences(doc)
}

// ValidateBytes checks raw document bytes in format.
func ValidateBytes(data []byte, format string) error {
	_, err := DecodeBytes(data, format)

	return err
}

func validateRaw(data []byte, format string) error {
	switch format {
	case FormatJSON:
		return validateSchema(gojsonschema.NewBytesLoader(data))
	case FormatYAML:
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: yaml: %w", ErrInvalidDocument, err)
		}

		return validateSchema(gojsonschema.NewGoLoader(stringKeys(raw)))
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func validateSchema(loader gojsonschema.JSONLoader) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}

	result, err := schema.Validate(loader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		problems = append(problems, resultErr.Field()+": "+resultErr.Description())
	}

	return &ValidationError{Problems: problems}
}

// stringKeys converts the map[any]any values yaml produces for numeric keys
// into the string-keyed maps JSON schema expects.
func stringKeys(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			typed[key] = stringKeys(item)
		}

		return typed
	case map[any]any:
		converted := make(map[string]any, len(typed))
		for key, item := range typed {
			converted[fmt.Sprint(key)] = stringKeys(item)
		}

		return converted
	case []any:
		for i, item := range typed {
			typed[i] = stringKeys(item)
		}

		return typed
	default:
		return value
	}
}

type edgeKey struct{ u, v int }

func keyOf(u, v int) edgeKey {
	if u > v {
		u, v = v, u
	}

	return edgeKey{u, v}
}

func checkReferences(doc *Document) error {
	var problems []string

	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	ids := make(map[int]bool, len(doc.Nodes))
	for _, node := range doc.Nodes {
		if ids[node.ID] {
			report("nodes: duplicate id %d", node.ID)
		}

		ids[node.ID] = true
	}

	if doc.Kind == KindComplex {
		for id := range len(doc.Nodes) {
			if !ids[id] {
				report("nodes: complex vertex ids must run from 0 to %d, %d is missing", len(doc.Nodes)-1, id)

				break
			}
		}

		if doc.Members != nil {
			report("members: only contour trees carry members")
		}
	}

	edges := make(map[edgeKey]bool, len(doc.Edges))
	for i, edge := range doc.Edges {
		switch {
		case !ids[edge[0]] || !ids[edge[1]]:
			report("edges.%d: unknown endpoint in [%d, %d]", i, edge[0], edge[1])
		case edge[0] == edge[1]:
			report("edges.%d: self loop on %d", i, edge[0])
		case edges[keyOf(edge[0], edge[1])]:
			report("edges.%d: duplicate edge [%d, %d]", i, edge[0], edge[1])
		default:
			edges[keyOf(edge[0], edge[1])] = true
		}
	}

	if doc.Kind == KindContourTree && len(problems) == 0 {
		if !isTree(doc) {
			report("edges: a contour tree must be connected and acyclic")
		}
	}

	if doc.Members != nil {
		for key := range doc.Members.Nodes {
			id, err := strconv.Atoi(key)
			if err != nil || !ids[id] {
				report("members.nodes: unknown node %q", key)
			}
		}

		seen := make(map[edgeKey]bool, len(doc.Members.Edges))
		for i, entry := range doc.Members.Edges {
			key := keyOf(entry.U, entry.V)

			switch {
			case !edges[key]:
				report("members.edges.%d: no edge between %d and %d", i, entry.U, entry.V)
			case seen[key]:
				report("members.edges.%d: duplicate entry for %d-%d", i, entry.U, entry.V)
			}

			seen[key] = true
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}

	return nil
}

// isTree reports whether the edges span every node without a cycle.
func isTree(doc *Document) bool {
	if len(doc.Edges) != len(doc.Nodes)-1 {
		return false
	}

	parent := make(map[int]int, len(doc.Nodes))

	var find func(id int) int
	find = func(id int) int {
		root, ok := parent[id]
		if !ok || root == id {
			return id
		}

		root = find(root)
		parent[id] = root

		return root
	}

	for _, edge := range doc.Edges {
		a, b := find(edge[0]), find(edge[1])
		if a == b {
			return false
		}

		parent[a] = b
	}

	return true
}
