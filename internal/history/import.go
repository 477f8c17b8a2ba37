package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// importNamespace seeds the question IDs given to imported records that
// carry none.
var importNamespace = uuid.MustParse("3f1c3a2e-8d0b-4c57-9a61-2b7e5d4f9c10")

// importSchema is the minimal shape an import file must have: an array of
// objects whose known fields carry the right types. Records missing a topic
// or a correctness flag pass the schema and are skipped by the adapter.
var importSchema = map[string]any{
	"type": "array",
	"items": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":       map[string]any{"type": "string"},
			"isCorrect":   map[string]any{"type": "boolean"},
			"correct":     map[string]any{"type": "boolean"},
			"timeSpentMs": map[string]any{"type": "number"},
			"timeSpent":   map[string]any{"type": "number"},
			"createdAt":   map[string]any{"type": []any{"string", "number"}},
			"timestamp":   map[string]any{"type": []any{"string", "number"}},
			"date":        map[string]any{"type": []any{"string", "number"}},
		},
	},
}

const importSchemaURL = "schema://answer-history.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func importValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants decoded JSON values, not Go literals.
		defBytes, err := json.Marshal(importSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		def, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(importSchemaURL, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(importSchemaURL)
	})
	return compiled, compileErr
}

// ImportResult summarizes a Decode call.
type ImportResult struct {
	Records []AnsweredRecord
	Skipped int
}

// Decode reads a JSON array of legacy records, validates it against the
// import schema and adapts every record to the canonical shape. Records
// without a question ID get one derived from their content and position,
// so re-importing the same file is idempotent and distinct records never
// collide on the store's (topic, question, time) key.
func Decode(r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	sch, err := importValidator()
	if err != nil {
		return nil, fmt.Errorf("compile history schema: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("history does not match schema: %w", err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}

	res := &ImportResult{Records: make([]AnsweredRecord, 0, len(items))}
	for i, item := range items {
		var lr LegacyRecord
		if err := json.Unmarshal(item, &lr); err != nil {
			return nil, fmt.Errorf("decode history record %d: %w", i, err)
		}
		rec, err := Adapt(lr)
		if err != nil {
			res.Skipped++
			continue
		}
		if rec.QuestionID == "" {
			rec.QuestionID = importedID(item, i)
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

func importedID(item json.RawMessage, pos int) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, item); err != nil {
		buf.Reset()
		buf.Write(item)
	}
	buf.WriteByte('#')
	buf.WriteString(strconv.Itoa(pos))
	return "import-" + uuid.NewSHA1(importNamespace, buf.Bytes()).String()
}
