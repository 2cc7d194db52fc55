// Copyright (c) GraphFlow Authors.
// Licensed under the MIT License.

package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
)

// SchemaType represents JSON Schema types.
type SchemaType string

const (
	SchemaTypeString  SchemaType = "string"
	SchemaTypeNumber  SchemaType = "number"
	SchemaTypeInteger SchemaType = "integer"
	SchemaTypeBoolean SchemaType = "boolean"
	SchemaTypeNull    SchemaType = "null"
	SchemaTypeObject  SchemaType = "object"
	SchemaTypeArray   SchemaType = "array"
)

// StringFormat represents common string format constraints.
type StringFormat string

const (
	FormatDateTime StringFormat = "date-time"
	FormatDate     StringFormat = "date"
	FormatTime     StringFormat = "time"
	FormatEmail    StringFormat = "email"
	FormatURI      StringFormat = "uri"
	FormatUUID     StringFormat = "uuid"
)

// Schema describes the expected shape of a tool's call arguments as a JSON
// Schema subset: types, required properties, enums, string and numeric
// constraints, and array items.
type Schema struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	Type SchemaType `json:"type,omitempty"`

	// Object properties
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`

	// Array items
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Enum and const
	Enum  []any `json:"enum,omitempty"`
	Const any   `json:"const,omitempty"`

	// String constraints
	MinLength *int         `json:"minLength,omitempty"`
	MaxLength *int         `json:"maxLength,omitempty"`
	Pattern   string       `json:"pattern,omitempty"`
	Format    StringFormat `json:"format,omitempty"`

	// Numeric constraints
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Default value
	Default any `json:"default,omitempty"`
}

// NewObjectSchema creates a new object schema.
func NewObjectSchema() *Schema {
	return &Schema{
		Type:       SchemaTypeObject,
		Properties: make(map[string]*Schema),
	}
}

// NewArraySchema creates a new array schema.
func NewArraySchema(items *Schema) *Schema {
	return &Schema{
		Type:  SchemaTypeArray,
		Items: items,
	}
}

// NewStringSchema creates a new string schema.
func NewStringSchema() *Schema {
	return &Schema{Type: SchemaTypeString}
}

// NewNumberSchema creates a new number schema.
func NewNumberSchema() *Schema {
	return &Schema{Type: SchemaTypeNumber}
}

// NewIntegerSchema creates a new integer schema.
func NewIntegerSchema() *Schema {
	return &Schema{Type: SchemaTypeInteger}
}

// NewBooleanSchema creates a new boolean schema.
func NewBooleanSchema() *Schema {
	return &Schema{Type: SchemaTypeBoolean}
}

// NewEnumSchema creates a new enum schema.
func NewEnumSchema(values ...any) *Schema {
	return &Schema{Enum: values}
}

// AddProperty adds a property to an object schema.
func (s *Schema) AddProperty(name string, prop *Schema) *Schema {
	if s.Properties == nil {
		s.Properties = make(map[string]*Schema)
	}
	s.Properties[name] = prop
	return s
}

// AddRequired adds required field names.
func (s *Schema) AddRequired(names ...string) *Schema {
	s.Required = append(s.Required, names...)
	return s
}

// WithDescription sets the description.
func (s *Schema) WithDescription(desc string) *Schema {
	s.Description = desc
	return s
}

// ToJSON serializes the schema to JSON.
func (s *Schema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// SchemaFromJSON deserializes a schema from JSON.
func SchemaFromJSON(data []byte) (*Schema, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON schema: %w", err)
	}
	return &schema, nil
}

// Problem describes one schema violation found during validation.
type Problem struct {
	// Path locates the offending value, e.g. "$.items[2].name".
	Path string `json:"path"`
	// Message describes the violation.
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Path, p.Message)
}

// Validate checks a decoded JSON value against the schema and returns every
// violation found. An empty result means the value conforms. Numbers are
// expected in encoding/json's decoded form (float64).
func (s *Schema) Validate(value any) []Problem {
	var problems []Problem
	s.validate("$", value, &problems)
	return problems
}

func (s *Schema) validate(path string, value any, problems *[]Problem) {
	if len(s.Enum) > 0 && !containsValue(s.Enum, value) {
		*problems = append(*problems, Problem{path, fmt.Sprintf("value %v not in enum %v", value, s.Enum)})
		return
	}
	if s.Const != nil && !equalValue(s.Const, value) {
		*problems = append(*problems, Problem{path, fmt.Sprintf("value %v does not equal const %v", value, s.Const)})
		return
	}

	switch s.Type {
	case SchemaTypeObject:
		s.validateObject(path, value, problems)
	case SchemaTypeArray:
		s.validateArray(path, value, problems)
	case SchemaTypeString:
		s.validateString(path, value, problems)
	case SchemaTypeNumber, SchemaTypeInteger:
		s.validateNumber(path, value, problems)
	case SchemaTypeBoolean:
		if _, ok := value.(bool); !ok {
			*problems = append(*problems, Problem{path, fmt.Sprintf("expected boolean, got %T", value)})
		}
	case SchemaTypeNull:
		if value != nil {
			*problems = append(*problems, Problem{path, fmt.Sprintf("expected null, got %T", value)})
		}
	}
}

func (s *Schema) validateObject(path string, value any, problems *[]Problem) {
	obj, ok := value.(map[string]any)
	if !ok {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected object, got %T", value)})
		return
	}
	for _, name := range s.Required {
		if _, present := obj[name]; !present {
			*problems = append(*problems, Problem{path, fmt.Sprintf("missing required property %q", name)})
		}
	}
	for name, val := range obj {
		prop, declared := s.Properties[name]
		if !declared {
			if s.AdditionalProperties != nil && !*s.AdditionalProperties {
				*problems = append(*problems, Problem{path, fmt.Sprintf("unexpected property %q", name)})
			}
			continue
		}
		prop.validate(path+"."+name, val, problems)
	}
}

func (s *Schema) validateArray(path string, value any, problems *[]Problem) {
	arr, ok := value.([]any)
	if !ok {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected array, got %T", value)})
		return
	}
	if s.MinItems != nil && len(arr) < *s.MinItems {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected at least %d items, got %d", *s.MinItems, len(arr))})
	}
	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected at most %d items, got %d", *s.MaxItems, len(arr))})
	}
	if s.Items != nil {
		for i, item := range arr {
			s.Items.validate(fmt.Sprintf("%s[%d]", path, i), item, problems)
		}
	}
}

func (s *Schema) validateString(path string, value any, problems *[]Problem) {
	str, ok := value.(string)
	if !ok {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected string, got %T", value)})
		return
	}
	if s.MinLength != nil && len(str) < *s.MinLength {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected at least %d characters, got %d", *s.MinLength, len(str))})
	}
	if s.MaxLength != nil && len(str) > *s.MaxLength {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected at most %d characters, got %d", *s.MaxLength, len(str))})
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			*problems = append(*problems, Problem{path, fmt.Sprintf("invalid pattern %q: %v", s.Pattern, err)})
		} else if !re.MatchString(str) {
			*problems = append(*problems, Problem{path, fmt.Sprintf("value %q does not match pattern %q", str, s.Pattern)})
		}
	}
}

func (s *Schema) validateNumber(path string, value any, problems *[]Problem) {
	num, ok := value.(float64)
	if !ok {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected %s, got %T", s.Type, value)})
		return
	}
	if s.Type == SchemaTypeInteger && math.Trunc(num) != num {
		*problems = append(*problems, Problem{path, fmt.Sprintf("expected integer, got %v", num)})
		return
	}
	if s.Minimum != nil && num < *s.Minimum {
		*problems = append(*problems, Problem{path, fmt.Sprintf("value %v below minimum %v", num, *s.Minimum)})
	}
	if s.Maximum != nil && num > *s.Maximum {
		*problems = append(*problems, Problem{path, fmt.Sprintf("value %v above maximum %v", num, *s.Maximum)})
	}
}

func containsValue(values []any, v any) bool {
	for _, candidate := range values {
		if equalValue(candidate, v) {
			return true
		}
	}
	return false
}

// equalValue compares decoded JSON values, tolerating int/float64 mismatch
// between hand-written schemas and decoded documents.
func equalValue(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return a == b
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
