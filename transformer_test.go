package minapi_test

import (
	"context"
	"net/http"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eerhardt/minapi"
)

func TestDeduplicateSchemas_promotesRepeatedSchemas(t *testing.T) {
	t.Parallel()

	type Widget struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	app := minapi.New()
	minapi.Get(app, "/widgets/{id}", func(id int) Widget { return Widget{} },
		minapi.WithResponseType(http.StatusOK, Widget{}),
	)
	minapi.Post(app, "/widgets", func() Widget { return Widget{} },
		minapi.WithResponseType(http.StatusCreated, Widget{}),
	)

	doc, err := app.Document("test").GenerateDocument(context.Background())
	require.NoError(t, err)

	// The repeated inline schema is promoted under the Go type name.
	require.NotNil(t, doc.Components)
	require.Contains(t, doc.Components.Schemas, "Widget")
	assert.Equal(t, "object", doc.Components.Schemas["Widget"].Type)

	// Inline occurrences are rewritten as references.
	get := doc.Paths["/widgets/{id}"]["get"].Responses["200"].Content["application/json"].Schema
	post := doc.Paths["/widgets"]["post"].Responses["201"].Content["application/json"].Schema
	assert.Equal(t, "#/components/schemas/Widget", get.Ref)
	assert.Empty(t, get.Properties)
	assert.Equal(t, "#/components/schemas/Widget", post.Ref)
}

func TestDeduplicateSchemas_singleUseStaysInline(t *testing.T) {
	t.Parallel()

	type Lonely struct {
		Value string `json:"value"`
	}

	app := minapi.New()
	minapi.Get(app, "/one", func() Lonely { return Lonely{} },
		minapi.WithResponseType(http.StatusOK, Lonely{}),
	)

	doc, err := app.Document("test").GenerateDocument(context.Background())
	require.NoError(t, err)

	schema := doc.Paths["/one"]["get"].Responses["200"].Content["application/json"].Schema
	assert.Empty(t, schema.Ref)
	assert.Contains(t, schema.Properties, "value")
	if doc.Components != nil {
		assert.NotContains(t, doc.Components.Schemas, "Lonely")
	}
}

func TestDeduplicateSchemas_scalarsNeverPromoted(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/a/{id}", func(id int) int { return id })
	minapi.Get(app, "/b/{id}", func(id int) int { return id })

	doc, err := app.Document("test").GenerateDocument(context.Background())
	require.NoError(t, err)

	// Both operations carry an identical integer parameter schema; bare
	// scalars stay inline.
	assert.Nil(t, doc.Components)
	a := doc.Paths["/a/{id}"]["get"].Parameters[0].Schema
	assert.Equal(t, "integer", a.Type)
	assert.Empty(t, a.Ref)
}

func TestDeduplicateSchemas_runsAfterUserTransformers(t *testing.T) {
	t.Parallel()

	type Gadget struct {
		Serial string `json:"serial"`
	}

	app := minapi.New()
	minapi.Get(app, "/gadgets", func() Gadget { return Gadget{} },
		minapi.WithResponseType(http.StatusOK, Gadget{}),
	)

	svc := app.Document("test",
		minapi.WithDocumentTransformer(func(_ context.Context, doc *minapi.Document, dctx *minapi.DocumentContext) error {
			// A transformer adding a second occurrence still gets deduplicated,
			// because the dedup pass always runs last.
			schema, err := dctx.Schemas.GetOrCreateSchema(reflect.TypeFor[Gadget](), nil, true)
			if err != nil {
				return err
			}
			doc.Paths["/gadgets"]["get"].Responses["200"].Content["application/xml"] = &minapi.MediaType{Schema: schema}
			return nil
		}),
	)

	doc, err := svc.GenerateDocument(context.Background())
	require.NoError(t, err)

	require.NotNil(t, doc.Components)
	require.Contains(t, doc.Components.Schemas, "Gadget")
	jsonSchema := doc.Paths["/gadgets"]["get"].Responses["200"].Content["application/json"].Schema
	xmlSchema := doc.Paths["/gadgets"]["get"].Responses["200"].Content["application/xml"].Schema
	assert.Equal(t, "#/components/schemas/Gadget", jsonSchema.Ref)
	assert.Equal(t, "#/components/schemas/Gadget", xmlSchema.Ref)
}

func TestSchemaTransformer_runsPerSchema(t *testing.T) {
	t.Parallel()

	type Doc struct {
		Body string `json:"body"`
	}

	app := minapi.New()
	minapi.Get(app, "/docs", func() Doc { return Doc{} },
		minapi.WithResponseType(http.StatusOK, Doc{}),
	)

	svc := app.Document("test",
		minapi.WithSchemaTransformer(func(schema *minapi.JSONSchema, sctx *minapi.SchemaContext) error {
			if sctx.Type == reflect.TypeFor[Doc]() {
				schema.Description = "a document"
			}
			return nil
		}),
	)

	doc, err := svc.GenerateDocument(context.Background())
	require.NoError(t, err)

	schema := doc.Paths["/docs"]["get"].Responses["200"].Content["application/json"].Schema
	assert.Equal(t, "a document", schema.Description)
}
