// Package schema validates inbound request bodies against embedded JSON schemas.
package schema

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/kaptinlin/jsonschema"
)

// Schema names.
const (
	Calculate = "calculate"
	Rights    = "rights"
	Complaint = "complaint"
	Rule      = "rule"
	Airline   = "airline"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ValidationError lists every constraint a document violated.
type ValidationError struct {
	Schema  string
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s request invalid: %s", e.Schema, strings.Join(e.Details, "; "))
}

// Invalid builds a ValidationError for checks made outside a schema.
func Invalid(schema string, details ...string) *ValidationError {
	return &ValidationError{Schema: schema, Details: details}
}

// Validator holds the compiled request schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(entries))}
	for _, entry := range entries {
		data, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", entry.Name(), err)
		}
		compiled, err := compiler.Compile(data)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", entry.Name(), err)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".json")] = compiled
	}
	return v, nil
}

// Validate checks data against the named schema. Violations are reported as *ValidationError.
func (v *Validator) Validate(name string, data []byte) error {
	s, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	if !json.Valid(data) {
		return Invalid(name, "request body is not valid JSON")
	}

	result := s.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}

	details := collect(result.ToList(), nil)
	if len(details) == 0 {
		for keyword, e := range result.Errors {
			details = append(details, fmt.Sprintf("%s: %s", keyword, e.Error()))
		}
	}
	sort.Strings(details)
	return &ValidationError{Schema: name, Details: details}
}

// collect flattens the leaf errors of an evaluation list into "location: message" strings.
func collect(list *jsonschema.List, out []string) []string {
	if list == nil || list.Valid {
		return out
	}
	if len(list.Details) == 0 {
		loc := list.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		for _, msg := range list.Errors {
			out = append(out, fmt.Sprintf("%s: %s", loc, msg))
		}
		return out
	}
	for i := range list.Details {
		out = collect(&list.Details[i], out)
	}
	return out
}
