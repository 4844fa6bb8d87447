package minapi_test

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eerhardt/minapi"
)

func TestTypeToSchema_scalars(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "string", minapi.TypeToSchema(reflect.TypeFor[string]()).Type)
	assert.Equal(t, "integer", minapi.TypeToSchema(reflect.TypeFor[int]()).Type)
	assert.Equal(t, "integer", minapi.TypeToSchema(reflect.TypeFor[uint16]()).Type)
	assert.Equal(t, "number", minapi.TypeToSchema(reflect.TypeFor[float64]()).Type)
	assert.Equal(t, "boolean", minapi.TypeToSchema(reflect.TypeFor[bool]()).Type)
}

func TestTypeToSchema_wellKnownTypes(t *testing.T) {
	t.Parallel()

	ts := minapi.TypeToSchema(reflect.TypeFor[time.Time]())
	assert.Equal(t, "string", ts.Type)
	assert.Equal(t, "date-time", ts.Format)

	d := minapi.TypeToSchema(reflect.TypeFor[time.Duration]())
	assert.Equal(t, "duration", d.Format)

	f := minapi.TypeToSchema(reflect.TypeFor[minapi.FileUpload]())
	assert.Equal(t, "binary", f.Format)

	b := minapi.TypeToSchema(reflect.TypeFor[[]byte]())
	assert.Equal(t, "byte", b.Format)
}

func TestTypeToSchema_composites(t *testing.T) {
	t.Parallel()

	arr := minapi.TypeToSchema(reflect.TypeFor[[]string]())
	assert.Equal(t, "array", arr.Type)
	require.NotNil(t, arr.Items)
	assert.Equal(t, "string", arr.Items.Type)

	m := minapi.TypeToSchema(reflect.TypeFor[map[string]int]())
	assert.Equal(t, "object", m.Type)
	require.NotNil(t, m.AdditionalProperties)
	assert.Equal(t, "integer", m.AdditionalProperties.Type)

	ptr := minapi.TypeToSchema(reflect.TypeFor[*bool]())
	assert.Equal(t, "boolean", ptr.Type)
}

func TestTypeToSchema_struct(t *testing.T) {
	t.Parallel()

	type Inner struct {
		When time.Time `json:"when"`
	}
	type Outer struct {
		Name    string `json:"name" required:"true" doc:"Display name"`
		Count   int    `json:"count,omitempty"`
		Skip    string `json:"-"`
		hidden  string //nolint:unused
		NoTag   bool
		Nested  Inner   `json:"nested"`
		Aliases []Inner `json:"aliases"`
	}

	s := minapi.TypeToSchema(reflect.TypeFor[Outer]())

	assert.Equal(t, "object", s.Type)
	assert.NotContains(t, s.Properties, "Skip")
	assert.NotContains(t, s.Properties, "hidden")
	assert.Contains(t, s.Properties, "NoTag")
	assert.Contains(t, s.Properties, "count")

	name := s.Properties["name"]
	assert.Equal(t, "Display name", name.Description)
	assert.Equal(t, []string{"name"}, s.Required)

	nested := s.Properties["nested"]
	assert.Equal(t, "object", nested.Type)
	assert.Contains(t, nested.Properties, "when")

	aliases := s.Properties["aliases"]
	assert.Equal(t, "array", aliases.Type)
}

func TestIsStreamType(t *testing.T) {
	t.Parallel()

	assert.True(t, minapi.IsStreamType(reflect.TypeFor[[]byte]()))
	assert.True(t, minapi.IsStreamType(reflect.TypeFor[*bytes.Reader]()))
	assert.False(t, minapi.IsStreamType(reflect.TypeFor[string]()))
	assert.False(t, minapi.IsStreamType(reflect.TypeFor[struct{}]()))
}

func TestSchemaService_transformerFailureAborts(t *testing.T) {
	t.Parallel()

	svc := minapi.NewSchemaService("test", func(*minapi.JSONSchema, *minapi.SchemaContext) error {
		return assert.AnError
	})

	_, err := svc.GetOrCreateSchema(reflect.TypeFor[struct{ X int }](), nil, false)
	require.ErrorIs(t, err, assert.AnError)
}

func TestSchemaService_nilType(t *testing.T) {
	t.Parallel()

	svc := minapi.NewSchemaService("test")
	s, err := svc.GetOrCreateSchema(nil, nil, false)
	require.NoError(t, err)
	assert.Nil(t, s)
}
