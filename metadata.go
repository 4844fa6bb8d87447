package minapi

import "reflect"

// Endpoint metadata is an ordered bag of arbitrary entries appended at
// registration time. Consumers that want a single value read the LAST
// matching entry: later registrations win, they are not merged.

// TagsMetadata sets the operation's tags. Last entry wins outright.
type TagsMetadata struct {
	Tags []string
}

// SummaryMetadata sets the operation summary.
type SummaryMetadata struct {
	Summary string
}

// DescriptionMetadata sets the operation description.
type DescriptionMetadata struct {
	Description string
}

// OperationIDMetadata sets an explicit operationId.
type OperationIDMetadata struct {
	ID string
}

// EndpointNameMetadata names the endpoint. Used as the operationId when
// neither OperationIDMetadata nor a route name is present.
type EndpointNameMetadata struct {
	Name string
}

// ProducesMetadata declares additional produced content types for a status
// code. These are emitted without schemas.
type ProducesMetadata struct {
	StatusCode   int
	ContentTypes []string
}

// ResponseTypeMetadata declares a response body type for a status code.
// IsDefault keys the response under "default" instead of the status code.
type ResponseTypeMetadata struct {
	StatusCode   int
	Type         reflect.Type
	ContentTypes []string
	IsDefault    bool
}

// AcceptsMetadata declares the request body type and its content types.
type AcceptsMetadata struct {
	Type         reflect.Type
	ContentTypes []string
	Optional     bool
}

// FormParameterMetadata declares one form-bound parameter. Container names
// the bound model the parameter originated from; parameters sharing a
// container collapse into one schema group during document generation.
type FormParameterMetadata struct {
	Name      string
	Type      reflect.Type
	Container string
}

// RequiredMetadata marks a named parameter as required regardless of what
// the binding layer reports.
type RequiredMetadata struct {
	Name string
}

// ExcludeMetadata removes the endpoint from generated API documents. The
// default inclusion predicate honors it; custom predicates may not.
type ExcludeMetadata struct{}

// LastMetadataFor returns the last entry of type T in a metadata bag.
// Filter factories use it to resolve metadata once at build time.
func LastMetadataFor[T any](metadata []any) (T, bool) {
	return lastMetadata[T](metadata)
}

// MetadataFor returns every entry of type T in registration order.
func MetadataFor[T any](metadata []any) []T {
	return allMetadata[T](metadata)
}

// lastMetadata returns the last entry of type T in the bag, honoring the
// last-registered-wins policy.
func lastMetadata[T any](metadata []any) (T, bool) {
	var found T
	var ok bool
	for _, m := range metadata {
		if v, isT := m.(T); isT {
			found = v
			ok = true
		}
	}
	return found, ok
}

// allMetadata returns every entry of type T in registration order.
func allMetadata[T any](metadata []any) []T {
	var out []T
	for _, m := range metadata {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
