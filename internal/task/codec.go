package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL names the embedded schema resource for the compiler.
const schemaURL = "locktodo://tasks.schema.json"

const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "completed"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "text": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}`

var schema = jsonschema.MustCompileString(schemaURL, documentSchema)

// ValidationError describes one schema violation in a persisted document.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Encode serializes tasks in persisted order. A nil slice encodes as [].
func Encode(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}
	return data, nil
}

// Discarded lists the ids of entries Decode left out of a valid document.
type Discarded struct {
	// Duplicates repeat an earlier id; the first occurrence is kept.
	Duplicates []string

	// Blank have no text once surrounding whitespace is trimmed.
	Blank []string
}

// Empty reports whether nothing was discarded.
func (d Discarded) Empty() bool {
	return len(d.Duplicates) == 0 && len(d.Blank) == 0
}

// Decode parses and validates a persisted document. Entries with blank text
// or a repeated id are left out and reported in Discarded. Text is kept as
// stored, surrounding whitespace included.
func Decode(data []byte) (tasks []Task, discarded Discarded, err error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, Discarded{}, fmt.Errorf("parse tasks: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, Discarded{}, schemaErrors(err)
	}

	var decoded []Task
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, Discarded{}, fmt.Errorf("decode tasks: %w", err)
	}

	seen := make(map[string]struct{}, len(decoded))
	tasks = make([]Task, 0, len(decoded))
	for _, t := range decoded {
		if _, ok := NormalizeText(t.Text); !ok {
			discarded.Blank = append(discarded.Blank, t.ID)
			continue
		}
		if _, ok := seen[t.ID]; ok {
			discarded.Duplicates = append(discarded.Duplicates, t.ID)
			continue
		}
		seen[t.ID] = struct{}{}
		tasks = append(tasks, t)
	}
	return tasks, discarded, nil
}

// schemaErrors flattens a jsonschema error tree into leaf violations.
func schemaErrors(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate tasks: %w", err)
	}

	var leaves []error
	collectLeaves(ve, &leaves)
	if len(leaves) == 0 {
		return &ValidationError{Err: errors.New(ve.Message)}
	}
	return errors.Join(leaves...)
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]error) {
	if len(ve.Causes) == 0 {
		*out = append(*out, &ValidationError{
			Path: pointerToPath(ve.InstanceLocation),
			Err:  errors.New(ve.Message),
		})
		return
	}
	for _, cause := range ve.Causes {
		collectLeaves(cause, out)
	}
}

// pointerToPath turns "/0/text" into "0.text".
func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
