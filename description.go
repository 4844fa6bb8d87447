package minapi

import (
	"reflect"
	"strings"
)

// ParameterSource identifies where a parameter's value is bound from.
type ParameterSource string

// Recognized parameter sources. Document generation fails on anything else.
const (
	SourcePath   ParameterSource = "path"
	SourceQuery  ParameterSource = "query"
	SourceHeader ParameterSource = "header"
	SourceBody   ParameterSource = "body"
	SourceForm   ParameterSource = "form"
)

// ParameterDescription describes one bindable parameter of an endpoint.
type ParameterDescription struct {
	Name   string
	Source ParameterSource
	Type   reflect.Type

	// Required reports whether the binding layer considers the parameter
	// mandatory. Path parameters always are.
	Required bool

	// Container names the bound model a form parameter originated from.
	// Parameters sharing a container collapse into one schema group.
	Container string

	// ContentTypes lists declared media types for body parameters.
	ContentTypes []string
}

// ResponseDescription describes one declared response of an endpoint.
type ResponseDescription struct {
	StatusCode   int
	IsDefault    bool
	Type         reflect.Type
	ContentTypes []string
}

// EndpointDescription is the document-generation view of one registered
// endpoint. Descriptions are derived from endpoint metadata and the
// reflected handler signature; they carry everything the operation
// builder needs and nothing request-scoped.
type EndpointDescription struct {
	Method    string
	Pattern   string
	Path      string // OpenAPI path template
	RouteName string
	GroupName string

	Handler  reflect.Type
	Metadata []any

	Parameters     []ParameterDescription
	ResponseTypes  []ResponseDescription
	BodyParameter  *ParameterDescription
	FormParameters []ParameterDescription
}

// ID returns a stable identifier for the endpoint, used to key cached
// operation transformer contexts.
func (d *EndpointDescription) ID() string {
	if d.RouteName != "" {
		return d.RouteName
	}
	return d.Method + " " + d.Pattern
}

// DescriptionProvider enumerates endpoint descriptions for document
// generation. *App is the canonical implementation; tests and adapters
// may supply their own.
type DescriptionProvider interface {
	Descriptions() []EndpointDescription
}

// Descriptions implements DescriptionProvider over the app's registered
// endpoints.
func (a *App) Descriptions() []EndpointDescription {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]EndpointDescription, 0, len(a.endpoints))
	for _, e := range a.endpoints {
		out = append(out, e.describe())
	}
	return out
}

// describe derives the endpoint's description from its handler signature
// and metadata bag.
func (e *endpoint) describe() EndpointDescription {
	d := EndpointDescription{
		Method:    e.method,
		Pattern:   e.pattern,
		Path:      toOpenAPIPath(e.pattern),
		RouteName: e.routeName,
		GroupName: e.groupName,
		Handler:   e.h.typ,
		Metadata:  e.metadata,
	}

	for _, p := range e.h.params {
		d.Parameters = append(d.Parameters, ParameterDescription{
			Name:     p.name,
			Source:   p.source,
			Type:     p.typ,
			Required: p.source == SourcePath,
		})
	}

	if accepts, ok := lastMetadata[AcceptsMetadata](e.metadata); ok {
		d.BodyParameter = &ParameterDescription{
			Name:         "body",
			Source:       SourceBody,
			Type:         accepts.Type,
			Required:     !accepts.Optional,
			ContentTypes: accepts.ContentTypes,
		}
	}

	for _, fp := range allMetadata[FormParameterMetadata](e.metadata) {
		d.FormParameters = append(d.FormParameters, ParameterDescription{
			Name:      fp.Name,
			Source:    SourceForm,
			Type:      fp.Type,
			Container: fp.Container,
		})
	}

	for _, rt := range allMetadata[ResponseTypeMetadata](e.metadata) {
		d.ResponseTypes = append(d.ResponseTypes, ResponseDescription{
			StatusCode:   rt.StatusCode,
			IsDefault:    rt.IsDefault,
			Type:         rt.Type,
			ContentTypes: rt.ContentTypes,
		})
	}

	return d
}

// toOpenAPIPath converts a Go 1.22 mux pattern like "/users/{id}" to an
// OpenAPI path template, stripping wildcard ellipses and the "{$}" marker.
func toOpenAPIPath(pattern string) string {
	path := strings.ReplaceAll(pattern, "...", "")
	path = strings.ReplaceAll(path, "{$}", "")
	if path == "" {
		path = "/"
	}
	return path
}
