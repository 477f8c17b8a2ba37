package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Purpose names what a request is for. It labels stored request events and
// selects the response schema the reply must satisfy.
type Purpose string

const (
	// PurposeQuestionGen is a request for one practice question.
	PurposeQuestionGen Purpose = "question-gen"

	purposeUnknown Purpose = "unknown"
)

func (p Purpose) String() string {
	if p == "" {
		return string(purposeUnknown)
	}
	return string(p)
}

// Schema is the JSON shape a purpose's replies must have.
type Schema struct {
	// Name is sent to providers that name their structured output
	// (tool name, json_schema name). Kebab-case.
	Name        string
	Description string
	Definition  map[string]any
}

type boundSchema struct {
	def      *Schema
	compiled *jsonschema.Schema
}

var (
	registryMu sync.RWMutex
	registry   = map[Purpose]boundSchema{}
)

// Register binds s to p. Requests carrying p are asked for structured
// output in s's shape, and replies that do not validate are rejected.
func Register(p Purpose, s *Schema) error {
	if p == "" || s == nil {
		return fmt.Errorf("register schema: purpose and schema are required")
	}
	compiled, err := compileSchema(s)
	if err != nil {
		return fmt.Errorf("register schema for %s: %w", p, err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[p]; dup {
		return fmt.Errorf("register schema: %s already bound", p)
	}
	registry[p] = boundSchema{def: s, compiled: compiled}
	return nil
}

// MustRegister is Register that panics on error. It is meant for package
// initialization.
func MustRegister(p Purpose, s *Schema) {
	if err := Register(p, s); err != nil {
		panic(err)
	}
}

// SchemaFor returns the schema bound to p, or nil.
func SchemaFor(p Purpose) *Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[p].def
}

func lookup(p Purpose) (boundSchema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	b, ok := registry[p]
	return b, ok
}

func compileSchema(s *Schema) (*jsonschema.Schema, error) {
	// The compiler wants decoded JSON values, not Go maps of typed slices.
	raw, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}

	url := "mem://" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// checkReply strips markdown fences some models wrap JSON in and validates
// the result against p's schema. Purposes without a schema pass through.
func checkReply(p Purpose, content json.RawMessage) (json.RawMessage, error) {
	b, ok := lookup(p)
	if !ok {
		return content, nil
	}

	content = stripFences(content)
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(content))
	if err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	if err := b.compiled.Validate(v); err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: fmt.Errorf("%s reply: %w", p, err)}
	}
	return content, nil
}

func stripFences(content json.RawMessage) json.RawMessage {
	s := bytes.TrimSpace(content)
	if !bytes.HasPrefix(s, []byte("```")) {
		return s
	}
	s = s[3:]
	if nl := bytes.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = bytes.TrimSuffix(bytes.TrimSpace(s), []byte("```"))
	return bytes.TrimSpace(s)
}

// ValidatingProvider rejects replies that do not match the schema bound to
// the request's purpose.
type ValidatingProvider struct {
	inner Provider
}

// WithValidation wraps p with schema checks.
func WithValidation(p Provider) Provider {
	return &ValidatingProvider{inner: p}
}

func (v *ValidatingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := v.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	content, err := checkReply(req.Purpose, resp.Content)
	if err != nil {
		return nil, err
	}
	resp.Content = content
	return resp, nil
}

func (v *ValidatingProvider) ModelID() string {
	return v.inner.ModelID()
}
