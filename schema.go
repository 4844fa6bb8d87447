package minapi

import (
	"encoding/json"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"
)

// JSONSchema represents a JSON Schema object (the subset OpenAPI 3.1 uses).
type JSONSchema struct {
	Type        string                `json:"type,omitempty"`
	Format      string                `json:"format,omitempty"`
	Properties  map[string]JSONSchema `json:"properties,omitempty"`
	Items       *JSONSchema           `json:"items,omitempty"`
	Required    []string              `json:"required,omitempty"`
	Description string                `json:"description,omitempty"`
	Enum        []string              `json:"enum,omitempty"`
	AllOf       []JSONSchema          `json:"allOf,omitempty"`
	Ref         string                `json:"$ref,omitempty"`

	// AdditionalProperties can be omitted (any) or a schema.
	AdditionalProperties *JSONSchema `json:"additionalProperties,omitempty"`
}

// SchemaTransformer mutates a schema right after it is generated for a
// type. Transformers run in registration order.
type SchemaTransformer func(schema *JSONSchema, sctx *SchemaContext) error

// SchemaContext is passed to schema transformers.
type SchemaContext struct {
	DocumentName string
	Type         reflect.Type
	Parameter    *ParameterDescription
}

// SchemaService produces JSON schemas for Go types. It remembers the
// component name of every struct schema it generates so the final
// deduplication pass can promote repeated schemas under a stable name.
// Generation is idempotent per type and safe for concurrent use.
type SchemaService struct {
	documentName string
	transformers []SchemaTransformer

	mu    sync.Mutex
	names map[string]string // schema fingerprint -> component name
}

// NewSchemaService creates a schema service for one named document.
func NewSchemaService(documentName string, transformers ...SchemaTransformer) *SchemaService {
	return &SchemaService{
		documentName: documentName,
		transformers: transformers,
		names:        make(map[string]string),
	}
}

// GetOrCreateSchema returns the schema for a type, running any registered
// schema transformers. When captureByRef is set the schema is registered
// as a deduplication candidate under the type's name.
func (s *SchemaService) GetOrCreateSchema(t reflect.Type, param *ParameterDescription, captureByRef bool) (*JSONSchema, error) {
	if t == nil {
		return nil, nil
	}

	schema := typeToSchema(t)

	for _, tf := range s.transformers {
		if err := tf(&schema, &SchemaContext{
			DocumentName: s.documentName,
			Type:         t,
			Parameter:    param,
		}); err != nil {
			return nil, err
		}
	}

	if captureByRef {
		s.register(t, &schema)
	}

	return &schema, nil
}

// register remembers the component name for a schema's fingerprint. Named
// struct types contribute their Go type name; anonymous shapes get none
// and fall back to a derived name during deduplication.
func (s *SchemaService) register(t reflect.Type, schema *JSONSchema) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t.Name() == "" {
		return
	}

	target := schema
	if schema.Items != nil {
		target = schema.Items
	}

	fp := schemaFingerprint(target)
	s.mu.Lock()
	if _, ok := s.names[fp]; !ok {
		s.names[fp] = t.Name()
	}
	s.mu.Unlock()
}

// componentName returns the registered name for a schema fingerprint.
func (s *SchemaService) componentName(fp string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.names[fp]
	return name, ok
}

// schemaFingerprint returns a canonical representation of a schema used
// for structural equality. encoding/json sorts map keys, so two
// structurally identical schemas always fingerprint the same.
func schemaFingerprint(s *JSONSchema) string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}

var readerType = reflect.TypeFor[io.Reader]()

// isStreamType reports whether a body type is stream-like, which defaults
// the request media type to application/octet-stream.
func isStreamType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
		return true
	}
	return t.Implements(readerType)
}

// typeToSchema converts a reflect.Type to a JSONSchema.
func typeToSchema(t reflect.Type) JSONSchema {
	if t.Kind() == reflect.Pointer {
		return typeToSchema(t.Elem())
	}

	switch t {
	case reflect.TypeFor[time.Time]():
		return JSONSchema{Type: "string", Format: "date-time"}
	case reflect.TypeFor[time.Duration]():
		return JSONSchema{Type: "string", Format: "duration"}
	case reflect.TypeFor[FileUpload]():
		return JSONSchema{Type: "string", Format: "binary"}
	}

	if t.Implements(readerType) {
		return JSONSchema{Type: "string", Format: "binary"}
	}

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		return JSONSchema{Type: "string"}
	case reflect.Bool:
		return JSONSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return JSONSchema{Type: "integer"}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return JSONSchema{Type: "integer"}
	case reflect.Float32, reflect.Float64:
		return JSONSchema{Type: "number"}
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return JSONSchema{Type: "string", Format: "byte"}
		}
		items := typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Array:
		items := typeToSchema(t.Elem())
		return JSONSchema{Type: "array", Items: &items}
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return JSONSchema{Type: "object"}
		}
		valSchema := typeToSchema(t.Elem())
		return JSONSchema{Type: "object", AdditionalProperties: &valSchema}
	case reflect.Struct:
		return structToSchema(t)
	case reflect.Interface:
		return JSONSchema{}
	default:
		return JSONSchema{}
	}
}

// structToSchema converts a struct type to an object schema with one
// property per exported field.
func structToSchema(t reflect.Type) JSONSchema {
	schema := JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}

	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name := jsonFieldName(f)
		if name == "-" {
			continue
		}

		prop := typeToSchema(f.Type)

		if doc := f.Tag.Get("doc"); doc != "" {
			prop.Description = doc
		}

		schema.Properties[name] = prop

		if f.Tag.Get("required") == "true" {
			schema.Required = append(schema.Required, name)
		}
	}

	return schema
}

// jsonFieldName returns the JSON field name for a struct field.
func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
