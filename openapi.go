package minapi

// Document is the root of a generated OpenAPI 3.1 document.
type Document struct {
	OpenAPI    string              `json:"openapi"`
	Info       Info                `json:"info"`
	Servers    []Server            `json:"servers,omitempty"`
	Paths      map[string]PathItem `json:"paths"`
	Components *Components         `json:"components,omitempty"`
	Tags       []Tag               `json:"tags,omitempty"`
}

// Info holds API metadata.
type Info struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// Server describes a server hosting the API.
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// PathItem maps lowercase HTTP methods to operations on one path.
type PathItem map[string]*Operation

// Operation describes a single API operation on a path.
type Operation struct {
	Summary     string               `json:"summary,omitempty"`
	Description string               `json:"description,omitempty"`
	OperationID string               `json:"operationId,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
	Parameters  []*Parameter         `json:"parameters,omitempty"`
	RequestBody *RequestBody         `json:"requestBody,omitempty"`
	Responses   map[string]*Response `json:"responses"`
}

// Parameter describes a single operation parameter.
type Parameter struct {
	Name     string      `json:"name"`
	In       string      `json:"in"`
	Required bool        `json:"required,omitempty"`
	Schema   *JSONSchema `json:"schema,omitempty"`
}

// RequestBody describes the request body of an operation.
type RequestBody struct {
	Required bool                  `json:"required,omitempty"`
	Content  map[string]*MediaType `json:"content"`
}

// MediaType is a media type object with an optional schema.
type MediaType struct {
	Schema *JSONSchema `json:"schema,omitempty"`
}

// Response describes a single response of an operation.
type Response struct {
	Description string                `json:"description"`
	Content     map[string]*MediaType `json:"content,omitempty"`
}

// Components holds reusable objects referenced from the rest of the
// document. Only schemas are produced by this package, by the final
// deduplication pass.
type Components struct {
	Schemas map[string]*JSONSchema `json:"schemas,omitempty"`
}

// Tag is a named grouping of operations.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// statusDefault keys a response that covers all otherwise-undeclared
// status codes.
const statusDefault = "default"
