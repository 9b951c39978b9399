package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed tool-entry.schema.json
var toolEntrySchema string

var (
	schemaOnce     sync.Once
	compiledEntry  *jsonschema.Schema
	compileFailure error
)

func entrySchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := jsonschema.UnmarshalJSON(strings.NewReader(toolEntrySchema))
		if err != nil {
			compileFailure = fmt.Errorf("parse embedded schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("tool-entry.schema.json", raw); err != nil {
			compileFailure = fmt.Errorf("register embedded schema: %w", err)
			return
		}
		compiledEntry, err = compiler.Compile("tool-entry.schema.json")
		if err != nil {
			compileFailure = fmt.Errorf("compile embedded schema: %w", err)
		}
	})
	return compiledEntry, compileFailure
}

var violationPrinter = message.NewPrinter(language.English)

// ValidateSchema checks the document against the embedded tool-entry
// schema. It returns one human-readable violation per failing field, or
// none when the document is valid. The error is reserved for schema
// machinery failures, not document problems.
func (d Document) ValidateSchema() ([]string, error) {
	sch, err := entrySchema()
	if err != nil {
		return nil, err
	}
	err = sch.Validate(map[string]any(d))
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	return flattenViolations(verr), nil
}

func flattenViolations(e *jsonschema.ValidationError) []string {
	if len(e.Causes) == 0 {
		loc := "/" + strings.Join(e.InstanceLocation, "/")
		return []string{fmt.Sprintf("%s: %s", loc, e.ErrorKind.LocalizedString(violationPrinter))}
	}
	var out []string
	for _, cause := range e.Causes {
		out = append(out, flattenViolations(cause)...)
	}
	return out
}

// ContentIssues scans the human-facing fields for forbidden words and
// returns one message per hit. Matching is case-insensitive substring.
func (d Document) ContentIssues(forbidden []string) []string {
	fields := map[string]string{
		"name":        d.String("name"),
		"description": d.String("description"),
	}
	if tags := d.Strings("tags"); len(tags) > 0 {
		fields["tags"] = strings.Join(tags, " ")
	}

	var issues []string
	for _, word := range forbidden {
		w := strings.ToLower(strings.TrimSpace(word))
		if w == "" {
			continue
		}
		for _, field := range []string{"name", "description", "tags"} {
			value, ok := fields[field]
			if !ok {
				continue
			}
			if strings.Contains(strings.ToLower(value), w) {
				issues = append(issues, fmt.Sprintf("forbidden word %q in %s", w, field))
			}
		}
	}
	return issues
}
