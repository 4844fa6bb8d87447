package minapi

import (
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// buildOperation derives one API operation from an endpoint description.
// All metadata fields follow the last-registered-wins policy: the last
// matching metadata entry supplies the value, earlier entries are ignored
// rather than merged.
func buildOperation(desc *EndpointDescription, schemas *SchemaService) (*Operation, error) {
	op := &Operation{
		Tags:      buildTags(desc),
		Responses: make(map[string]*Response),
	}

	if m, ok := lastMetadata[SummaryMetadata](desc.Metadata); ok {
		op.Summary = m.Summary
	}
	if m, ok := lastMetadata[DescriptionMetadata](desc.Metadata); ok {
		op.Description = m.Description
	}
	op.OperationID = buildOperationID(desc)

	if err := buildResponses(op, desc, schemas); err != nil {
		return nil, err
	}
	if err := buildParameters(op, desc, schemas); err != nil {
		return nil, err
	}
	if err := buildRequestBody(op, desc, schemas); err != nil {
		return nil, err
	}

	return op, nil
}

// buildTags returns the last tags metadata entry, or a single tag named
// after the endpoint's controller grouping when no tags are declared.
func buildTags(desc *EndpointDescription) []string {
	if m, ok := lastMetadata[TagsMetadata](desc.Metadata); ok {
		return m.Tags
	}
	if desc.GroupName != "" {
		return []string{desc.GroupName}
	}
	return nil
}

// buildOperationID resolves the operation id: explicit metadata first,
// then the route name, then endpoint-name metadata.
func buildOperationID(desc *EndpointDescription) string {
	if m, ok := lastMetadata[OperationIDMetadata](desc.Metadata); ok {
		return m.ID
	}
	if desc.RouteName != "" {
		return desc.RouteName
	}
	if m, ok := lastMetadata[EndpointNameMetadata](desc.Metadata); ok {
		return m.Name
	}
	return ""
}

// buildResponses fills op.Responses from the declared response types. An
// endpoint declaring none gets exactly one 200 response with no content.
func buildResponses(op *Operation, desc *EndpointDescription, schemas *SchemaService) error {
	if len(desc.ResponseTypes) == 0 {
		op.Responses[strconv.Itoa(http.StatusOK)] = &Response{
			Description: http.StatusText(http.StatusOK),
		}
		return nil
	}

	produces := allMetadata[ProducesMetadata](desc.Metadata)

	for _, rt := range desc.ResponseTypes {
		key := statusDefault
		if !rt.IsDefault {
			key = strconv.Itoa(rt.StatusCode)
		}

		resp := &Response{Description: http.StatusText(rt.StatusCode)}

		if rt.Type != nil {
			schema, err := schemas.GetOrCreateSchema(rt.Type, nil, true)
			if err != nil {
				return err
			}

			contentTypes := rt.ContentTypes
			if len(contentTypes) == 0 {
				contentTypes = []string{"application/json"}
			}

			resp.Content = make(map[string]*MediaType, len(contentTypes))
			for _, ct := range contentTypes {
				resp.Content[ct] = &MediaType{Schema: schema}
			}
		}

		// Separately declared content types union in without schemas.
		for _, p := range produces {
			if p.StatusCode != rt.StatusCode {
				continue
			}
			for _, ct := range p.ContentTypes {
				if resp.Content == nil {
					resp.Content = make(map[string]*MediaType)
				}
				if _, ok := resp.Content[ct]; !ok {
					resp.Content[ct] = &MediaType{}
				}
			}
		}

		op.Responses[key] = resp
	}

	return nil
}

// buildParameters fills op.Parameters from non-body parameters. A path
// parameter is always required; otherwise one of binder-required or
// required-metadata suffices.
func buildParameters(op *Operation, desc *EndpointDescription, schemas *SchemaService) error {
	required := make(map[string]bool)
	for _, m := range allMetadata[RequiredMetadata](desc.Metadata) {
		required[m.Name] = true
	}

	for i := range desc.Parameters {
		p := &desc.Parameters[i]

		var in string
		switch p.Source {
		case SourceQuery:
			in = "query"
		case SourceHeader:
			in = "header"
		case SourcePath:
			in = "path"
		default:
			return fmt.Errorf("%w: %q for parameter %q on %s %s",
				ErrParameterSource, p.Source, p.Name, desc.Method, desc.Path)
		}

		schema, err := schemas.GetOrCreateSchema(p.Type, p, false)
		if err != nil {
			return err
		}

		op.Parameters = append(op.Parameters, &Parameter{
			Name:     p.Name,
			In:       in,
			Required: p.Source == SourcePath || p.Required || required[p.Name],
			Schema:   schema,
		})
	}

	return nil
}

// buildRequestBody fills op.RequestBody. An endpoint has at most one of a
// designated body parameter or form parameters, never both.
func buildRequestBody(op *Operation, desc *EndpointDescription, schemas *SchemaService) error {
	switch {
	case desc.BodyParameter != nil:
		return buildJSONBody(op, desc, schemas)
	case len(desc.FormParameters) > 0:
		return buildFormBody(op, desc, schemas)
	default:
		return nil
	}
}

func buildJSONBody(op *Operation, desc *EndpointDescription, schemas *SchemaService) error {
	p := desc.BodyParameter

	contentTypes := p.ContentTypes
	if len(contentTypes) == 0 {
		if isStreamType(p.Type) {
			contentTypes = []string{"application/octet-stream"}
		} else {
			contentTypes = []string{"application/json"}
		}
	}

	schema, err := schemas.GetOrCreateSchema(p.Type, p, true)
	if err != nil {
		return err
	}

	required := make(map[string]bool)
	for _, m := range allMetadata[RequiredMetadata](desc.Metadata) {
		required[m.Name] = true
	}

	body := &RequestBody{
		Required: p.Required || required[p.Name],
		Content:  make(map[string]*MediaType, len(contentTypes)),
	}
	for _, ct := range contentTypes {
		body.Content[ct] = &MediaType{Schema: schema}
	}

	op.RequestBody = body
	return nil
}

// formGroup is one schema group of form parameters sharing a binding
// container. Different description sources explode a bound model into
// flat parameters or keep one parameter per model; grouping by container
// normalizes both shapes.
type formGroup struct {
	name   string
	params []*ParameterDescription
}

func buildFormBody(op *Operation, desc *EndpointDescription, schemas *SchemaService) error {
	groups := groupFormParameters(desc.FormParameters)

	mediaType := "application/x-www-form-urlencoded"
	if hasFileParameter(desc.FormParameters) {
		mediaType = "multipart/form-data"
	}

	var schema *JSONSchema
	var err error
	if len(groups) == 1 {
		schema, err = buildGroupSchema(groups[0], schemas)
	} else {
		schema, err = buildAggregateSchema(groups, schemas)
	}
	if err != nil {
		return err
	}

	op.RequestBody = &RequestBody{
		Content: map[string]*MediaType{
			mediaType: {Schema: schema},
		},
	}
	return nil
}

// groupFormParameters groups parameters by originating container in
// first-appearance order. A parameter with no container is its own group.
func groupFormParameters(params []ParameterDescription) []formGroup {
	var groups []formGroup
	index := make(map[string]int)

	for i := range params {
		p := &params[i]
		key := p.Container
		if key == "" {
			key = p.Name
		}
		gi, ok := index[key]
		if !ok {
			gi = len(groups)
			index[key] = gi
			groups = append(groups, formGroup{name: key})
		}
		groups[gi].params = append(groups[gi].params, p)
	}

	return groups
}

func hasFileParameter(params []ParameterDescription) bool {
	for i := range params {
		if isFileType(params[i].Type) {
			return true
		}
	}
	return false
}

func isFileType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		return isFileType(t.Elem())
	}
	return t == reflect.TypeFor[FileUpload]()
}

// buildGroupSchema builds the schema for a single group. One complex
// parameter contributes its object schema directly; simple and file
// parameters are merged flat into an object, with files always appearing
// as named binary properties.
func buildGroupSchema(g formGroup, schemas *SchemaService) (*JSONSchema, error) {
	if len(g.params) == 1 && isComplexType(g.params[0].Type) && !isFileType(g.params[0].Type) {
		return schemas.GetOrCreateSchema(g.params[0].Type, g.params[0], true)
	}

	obj := &JSONSchema{
		Type:       "object",
		Properties: make(map[string]JSONSchema),
	}
	for _, p := range g.params {
		s, err := schemas.GetOrCreateSchema(p.Type, p, false)
		if err != nil {
			return nil, err
		}
		obj.Properties[p.Name] = *s
	}
	return obj, nil
}

// buildAggregateSchema combines multiple groups into an allOf schema,
// one branch per group.
func buildAggregateSchema(groups []formGroup, schemas *SchemaService) (*JSONSchema, error) {
	agg := &JSONSchema{}
	for _, g := range groups {
		s, err := buildGroupSchema(g, schemas)
		if err != nil {
			return nil, err
		}
		agg.AllOf = append(agg.AllOf, *s)
	}
	return agg, nil
}

// isComplexType reports whether a type renders as an object schema.
func isComplexType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		return isComplexType(t.Elem())
	}
	if t == reflect.TypeFor[FileUpload]() || t == reflect.TypeFor[time.Time]() {
		return false
	}
	return t.Kind() == reflect.Struct || t.Kind() == reflect.Map
}
