package router

import (
	"encoding/json"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

const schemaRefPrefix = "#/components/schemas/"

var (
	timeType       = reflect.TypeOf(time.Time{})
	rawMessageType = reflect.TypeOf(json.RawMessage{})
)

// schemaRegistry tracks schema definitions to enable reuse
type schemaRegistry struct {
	schemas map[string]map[string]any
}

// newSchemaRegistry creates a new schema registry
func newSchemaRegistry() *schemaRegistry {
	return &schemaRegistry{
		schemas: make(map[string]map[string]any),
	}
}

// register adds a schema to the registry
func (r *schemaRegistry) register(typeName string, schema map[string]any) {
	r.schemas[typeName] = schema
}

// has reports whether typeName is already registered
func (r *schemaRegistry) has(typeName string) bool {
	_, ok := r.schemas[typeName]
	return ok
}

// getSchemas returns all registered schemas
func (r *schemaRegistry) getSchemas() map[string]any {
	result := make(map[string]any, len(r.schemas))
	for name, schema := range r.schemas {
		result[name] = schema
	}
	return result
}

// schemaGenerator handles the conversion of Go types to JSON Schema. Named
// struct types are registered once and referenced with $ref; anonymous
// structs are inlined.
type schemaGenerator struct {
	registry *schemaRegistry

	// processing tracks types being generated to break circular references
	processing map[reflect.Type]bool
}

// newSchemaGenerator creates a new schema generator writing into registry
func newSchemaGenerator(registry *schemaRegistry) *schemaGenerator {
	return &schemaGenerator{
		registry:   registry,
		processing: make(map[reflect.Type]bool),
	}
}

// schemaFor converts a Go type to a JSON Schema
func (g *schemaGenerator) schemaFor(typ reflect.Type) map[string]any {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	switch typ {
	case timeType:
		return map[string]any{"type": "string", "format": "date-time"}
	case rawMessageType:
		return map[string]any{"type": "object"}
	}

	if schema := basicTypeSchema(typ.Kind()); schema != nil {
		return schema
	}

	switch typ.Kind() {
	case reflect.Struct:
		if typ.Name() == "" {
			return g.structSchema(typ)
		}
		return g.ref(typ)
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": g.schemaFor(typ.Elem()),
		}
	case reflect.Map:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": g.schemaFor(typ.Elem()),
		}
	default:
		return map[string]any{"type": "object"}
	}
}

// ref registers a named struct type (once) and returns a reference to it
func (g *schemaGenerator) ref(typ reflect.Type) map[string]any {
	name := typ.Name()

	if !g.registry.has(name) && !g.processing[typ] {
		g.processing[typ] = true
		schema := g.structSchema(typ)
		delete(g.processing, typ)

		g.registry.register(name, schema)
	}

	return map[string]any{"$ref": schemaRefPrefix + name}
}

// structSchema converts a struct type to an object schema
func (g *schemaGenerator) structSchema(typ reflect.Type) map[string]any {
	properties := make(map[string]any)
	required := []string{}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		// skip unexported fields
		if field.PkgPath != "" {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name, isRequired := parseJsonTag(jsonTag, field.Name)
		if isRequired {
			required = append(required, name)
		}

		fieldSchema := g.schemaFor(field.Type)
		if _, isRef := fieldSchema["$ref"]; !isRef {
			addFieldMetadata(fieldSchema, field)
		}
		properties[name] = fieldSchema
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// parseJsonTag extracts name and required status from a json tag
func parseJsonTag(jsonTag, fieldName string) (string, bool) {
	if jsonTag == "" {
		return fieldName, true
	}

	parts := strings.Split(jsonTag, ",")
	name := parts[0]
	if name == "" {
		name = fieldName
	}

	return name, !slices.Contains(parts[1:], "omitempty")
}

// addFieldMetadata adds documentation from struct tags to a schema
func addFieldMetadata(schema map[string]any, field reflect.StructField) {
	if docTag := field.Tag.Get("doc"); docTag != "" {
		schema["description"] = docTag
	}

	if exampleTag := field.Tag.Get("example"); exampleTag != "" {
		schema["example"] = typedExample(schema["type"], exampleTag)
	}

	if enumTag := field.Tag.Get("enum"); enumTag != "" {
		schema["enum"] = strings.Split(enumTag, ",")
	}
}

// typedExample converts an example tag to the JSON type of its schema, falling
// back to the raw string when it does not parse
func typedExample(schemaType any, example string) any {
	switch schemaType {
	case "boolean":
		if b, err := strconv.ParseBool(example); err == nil {
			return b
		}
	case "integer":
		if n, err := strconv.ParseInt(example, 10, 64); err == nil {
			return n
		}
	case "number":
		if f, err := strconv.ParseFloat(example, 64); err == nil {
			return f
		}
	}
	return example
}

// basicTypeSchema creates a schema for a basic Go type
func basicTypeSchema(kind reflect.Kind) map[string]any {
	switch kind {
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.String:
		return map[string]any{"type": "string"}
	default:
		return nil
	}
}

// schemaRef returns the schema for t, registering named struct types in the
// router's registry so the result holds a $ref instead of an inline copy
func (dr *DocRouter) schemaRef(t any) map[string]any {
	if t == nil {
		return nil
	}
	return newSchemaGenerator(dr.schemaRegistry).schemaFor(reflect.TypeOf(t))
}
