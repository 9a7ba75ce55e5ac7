// Package schema declares the shape of a job posting record. The same
// descriptor feeds the prompt template sent to the model and the JSON Schema
// the record is validated against before it is written.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"jobportal/internal/apperr"
)

type FieldType string

const (
	TypeString  FieldType = "String"
	TypeNumber  FieldType = "Number"
	TypeBoolean FieldType = "Boolean"
	TypeArray   FieldType = "Array"
	TypeObject  FieldType = "Object"
	TypeDate    FieldType = "Date"
)

// datePattern accepts an empty string or anything starting with an ISO date,
// which covers both "2024-05-01" and full RFC 3339 timestamps.
const datePattern = `^$|^\d{4}-\d{2}-\d{2}`

type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Enum     []string  `json:"enum,omitempty"`
	// Items is the element type for Array fields; defaults to String.
	Items FieldType `json:"items,omitempty"`
}

type Descriptor struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Default is the built-in job posting descriptor.
func Default() *Descriptor {
	return &Descriptor{
		Name: "JobPosting",
		Fields: []Field{
			{Name: "title", Type: TypeString, Required: true},
			{Name: "company", Type: TypeString, Required: true},
			{Name: "description", Type: TypeString, Required: true},
			{Name: "location", Type: TypeString},
			{Name: "jobType", Type: TypeString, Enum: []string{"", "Full-time", "Part-time", "Contract", "Internship", "Temporary", "Freelance"}},
			{Name: "isRemote", Type: TypeBoolean},
			{Name: "salary", Type: TypeString},
			{Name: "experience", Type: TypeString},
			{Name: "qualification", Type: TypeString},
			{Name: "skills", Type: TypeArray, Items: TypeString},
			{Name: "requirements", Type: TypeArray, Items: TypeString},
			{Name: "responsibilities", Type: TypeArray, Items: TypeString},
			{Name: "benefits", Type: TypeArray, Items: TypeString},
			{Name: "applicationUrl", Type: TypeString},
			{Name: "contactEmail", Type: TypeString},
			{Name: "lastDate", Type: TypeDate},
			{Name: "slug", Type: TypeString},
		},
	}
}

// Load reads a descriptor from a JSON file.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(filepath.Clean(path)) // #nosec G304 -- path comes from application config
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", path, err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", path, err)
	}
	if err := d.check(); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	// every stored record carries a slug, declared or not
	if _, ok := d.Field("slug"); !ok {
		d.Fields = append(d.Fields, Field{Name: "slug", Type: TypeString})
	}
	return &d, nil
}

func (d *Descriptor) check() error {
	if len(d.Fields) == 0 {
		return fmt.Errorf("no fields declared")
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
		switch f.Type {
		case TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeDate:
		default:
			return fmt.Errorf("field %q has unknown type %q", f.Name, f.Type)
		}
	}
	for _, core := range []string{"title", "company", "description"} {
		if !seen[core] {
			return fmt.Errorf("core field %q not declared", core)
		}
	}
	for _, core := range []string{"title", "company", "description", "slug"} {
		if f, ok := d.Field(core); ok && f.Type != TypeString {
			return fmt.Errorf("core field %q must be a String", core)
		}
	}
	return nil
}

// Field looks up a field by name.
func (d *Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Template renders the descriptor as the structural template embedded in
// prompts, one field per line in declaration order.
func (d *Descriptor) Template() string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i, f := range d.Fields {
		entry := map[string]any{"type": f.Type}
		if f.Type == TypeArray {
			entry["type"] = []FieldType{f.itemType()}
		}
		if f.Required {
			entry["required"] = true
		}
		if len(f.Enum) > 0 {
			entry["enum"] = f.Enum
		}
		// map keys marshal sorted, which keeps the output stable
		b, _ := json.Marshal(entry)
		fmt.Fprintf(&sb, "  %q: %s", f.Name, b)
		if i < len(d.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

func (f Field) itemType() FieldType {
	if f.Items == "" {
		return TypeString
	}
	return f.Items
}

// JSONSchema renders the descriptor as a draft-07 JSON Schema document.
// Optional fields also accept null, since models emit null for unknown values.
func (d *Descriptor) JSONSchema() map[string]any {
	props := make(map[string]any, len(d.Fields))
	required := make([]string, 0)

	for _, f := range d.Fields {
		prop := jsonType(f.Type)
		if f.Type == TypeArray {
			prop["items"] = jsonType(f.itemType())
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		if f.Required {
			required = append(required, f.Name)
			if f.Type == TypeString {
				prop["minLength"] = 1
			}
		} else {
			prop = map[string]any{"anyOf": []any{prop, map[string]any{"type": "null"}}}
		}
		props[f.Name] = prop
	}
	sort.Strings(required)

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                d.Name,
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func jsonType(t FieldType) map[string]any {
	switch t {
	case TypeNumber:
		return map[string]any{"type": "number"}
	case TypeBoolean:
		return map[string]any{"type": "boolean"}
	case TypeArray:
		return map[string]any{"type": "array"}
	case TypeObject:
		return map[string]any{"type": "object"}
	case TypeDate:
		return map[string]any{"type": "string", "pattern": datePattern}
	default:
		return map[string]any{"type": "string"}
	}
}

// Prune deletes keys the descriptor does not declare and returns their names
// sorted. Declared fields are left for Validate to judge.
func (d *Descriptor) Prune(record map[string]any) []string {
	var dropped []string
	for k := range record {
		if _, ok := d.Field(k); !ok {
			dropped = append(dropped, k)
			delete(record, k)
		}
	}
	sort.Strings(dropped)
	return dropped
}

// Validate checks record against the descriptor. Schema violations come back
// as an apperr ValidationError listing every failing field.
func (d *Descriptor) Validate(record map[string]any) error {
	schemaLoader := gojsonschema.NewGoLoader(d.JSONSchema())
	documentLoader := gojsonschema.NewGoLoader(record)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperr.New(apperr.KindValidation, "schema validation failed during load", err)
	}
	if result.Valid() {
		return nil
	}

	fields := make([]apperr.FieldError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		fields = append(fields, apperr.FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}
	return apperr.Validation(fields)
}
