// Package schema validates request bodies against the JSON Schemas embedded
// under schemas/.
package schema

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/NeousAxis/globalworkflow/internal/domain"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per request body.
const (
	Video   = "video"
	Social  = "social"
	Visual  = "visual"
	Podcast = "podcast"
	Report  = "report"
	Weekly  = "weekly"
)

// Validator holds the compiled request schemas.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	files, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("read schemas: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	names := make([]string, 0, len(files))
	for _, f := range files {
		data, err := schemaFS.ReadFile(path.Join("schemas", f.Name()))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", f.Name(), err)
		}
		name := strings.TrimSuffix(f.Name(), ".json")
		if err := compiler.AddResource(schemaID(name), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema resource %s: %w", name, err)
		}
		names = append(names, name)
	}
	v := &Validator{schemas: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		compiled, err := compiler.Compile(schemaID(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = compiled
	}
	return v, nil
}

// Validate checks a raw JSON body. Malformed JSON and schema violations are
// both reported as *domain.ValidationError.
func (v *Validator) Validate(name string, body []byte) error {
	compiled, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("schema %q not registered", name)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return &domain.ValidationError{Reason: "invalid JSON body: " + err.Error()}
	}
	if err := compiled.Validate(payload); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return leafError(verr)
		}
		return &domain.ValidationError{Reason: err.Error()}
	}
	return nil
}

// leafError reports the first innermost cause, which names the offending field.
func leafError(verr *jsonschema.ValidationError) *domain.ValidationError {
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	field := strings.TrimPrefix(verr.InstanceLocation, "/")
	field = strings.ReplaceAll(field, "/", ".")
	return &domain.ValidationError{Field: field, Reason: verr.Message}
}

func schemaID(name string) string {
	return "inmemory://" + name + ".json"
}
