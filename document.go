package minapi

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// DocumentTransformer mutates the whole in-progress document. Transformers
// run in registration order; each completes fully before the next starts,
// so later transformers may rely on earlier ones' output.
type DocumentTransformer func(ctx context.Context, doc *Document, dctx *DocumentContext) error

// OperationTransformer mutates one operation right after it is built.
type OperationTransformer func(ctx context.Context, op *Operation, octx *OperationContext) error

// DocumentContext is passed to document transformers.
type DocumentContext struct {
	DocumentName string
	Schemas      *SchemaService
}

// OperationContext is the per-endpoint context handed to operation
// transformers. Contexts are cached per endpoint for the lifetime of the
// document service, so custom transformers can look one up later without
// recomputation.
type OperationContext struct {
	DocumentName string
	Description  EndpointDescription
	Schemas      *SchemaService
}

// DocumentOption configures a DocumentService.
type DocumentOption func(*documentOptions)

type documentOptions struct {
	info             Info
	servers          []Server
	shouldInclude    func(*EndpointDescription) bool
	docTransforms    []DocumentTransformer
	opTransforms     []OperationTransformer
	schemaTransforms []SchemaTransformer
	cache            bool
}

// WithDocumentInfo sets the document's info block.
func WithDocumentInfo(info Info) DocumentOption {
	return func(o *documentOptions) {
		o.info = info
	}
}

// WithDocumentServers sets the document's servers array.
func WithDocumentServers(servers ...Server) DocumentOption {
	return func(o *documentOptions) {
		o.servers = servers
	}
}

// WithInclusionPredicate replaces the default inclusion predicate, which
// admits every endpoint not carrying ExcludeMetadata.
func WithInclusionPredicate(pred func(*EndpointDescription) bool) DocumentOption {
	return func(o *documentOptions) {
		o.shouldInclude = pred
	}
}

// WithDocumentTransformer appends a document-level transformer. Order of
// registration is preserved and significant.
func WithDocumentTransformer(t DocumentTransformer) DocumentOption {
	return func(o *documentOptions) {
		o.docTransforms = append(o.docTransforms, t)
	}
}

// WithOperationTransformer appends an operation-level transformer.
func WithOperationTransformer(t OperationTransformer) DocumentOption {
	return func(o *documentOptions) {
		o.opTransforms = append(o.opTransforms, t)
	}
}

// WithSchemaTransformer appends a schema-level transformer.
func WithSchemaTransformer(t SchemaTransformer) DocumentOption {
	return func(o *documentOptions) {
		o.schemaTransforms = append(o.schemaTransforms, t)
	}
}

// WithDocumentCache caches the generated document after the first build.
// Safe once the application has started: endpoints are immutable from then on.
func WithDocumentCache() DocumentOption {
	return func(o *documentOptions) {
		o.cache = true
	}
}

// DocumentService generates the OpenAPI document for one document name.
// Options, the schema service, and the operation context cache are
// constructed once and shared across builds; concurrent builds for the
// same name are serialized.
type DocumentService struct {
	name     string
	provider DescriptionProvider
	schemas  *SchemaService
	opts     documentOptions

	buildMu sync.Mutex // one build at a time per document name

	ctxMu  sync.RWMutex
	opCtxs map[string]*OperationContext

	cached *Document
}

// NewDocumentService creates a document service over a description provider.
func NewDocumentService(name string, provider DescriptionProvider, opts ...DocumentOption) *DocumentService {
	o := documentOptions{
		shouldInclude: defaultShouldInclude,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.shouldInclude == nil {
		o.shouldInclude = defaultShouldInclude
	}

	return &DocumentService{
		name:     name,
		provider: provider,
		schemas:  NewSchemaService(name, o.schemaTransforms...),
		opts:     o,
		opCtxs:   make(map[string]*OperationContext),
	}
}

func defaultShouldInclude(desc *EndpointDescription) bool {
	_, excluded := lastMetadata[ExcludeMetadata](desc.Metadata)
	return !excluded
}

// Name returns the document name.
func (s *DocumentService) Name() string { return s.name }

// Schemas returns the document's schema service.
func (s *DocumentService) Schemas() *SchemaService { return s.schemas }

// OperationContext returns the cached per-endpoint transformer context
// populated by the last build. Safe for concurrent lookup between builds.
func (s *DocumentService) OperationContext(endpointID string) (*OperationContext, bool) {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	octx, ok := s.opCtxs[endpointID]
	return octx, ok
}

// GenerateDocument builds the document: info and servers, one operation
// per included endpoint description grouped by path, document transformers
// in order, and the mandatory schema deduplication pass last. The context
// is honored between transformer steps. Any transformer error aborts the
// build with no partial document.
func (s *DocumentService) GenerateDocument(ctx context.Context) (*Document, error) {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()

	if s.opts.cache && s.cached != nil {
		return s.cached, nil
	}

	doc := &Document{
		OpenAPI: "3.1.0",
		Info:    s.opts.info,
		Servers: s.opts.servers,
		Paths:   make(map[string]PathItem),
	}

	tagSet := make(map[string]bool)

	descs := s.provider.Descriptions()
	for i := range descs {
		desc := &descs[i]
		if !s.opts.shouldInclude(desc) {
			continue
		}

		op, err := buildOperation(desc, s.schemas)
		if err != nil {
			return nil, err
		}

		octx := &OperationContext{
			DocumentName: s.name,
			Description:  *desc,
			Schemas:      s.schemas,
		}
		s.ctxMu.Lock()
		s.opCtxs[desc.ID()] = octx
		s.ctxMu.Unlock()

		for _, t := range s.opts.opTransforms {
			if err := t(ctx, op, octx); err != nil {
				return nil, err
			}
		}

		// Multiple methods on one logical path merge into one path item.
		item := doc.Paths[desc.Path]
		if item == nil {
			item = make(PathItem)
			doc.Paths[desc.Path] = item
		}
		item[strings.ToLower(desc.Method)] = op

		for _, tag := range op.Tags {
			tagSet[tag] = true
		}
	}

	doc.Tags = sortedTags(tagSet)

	dctx := &DocumentContext{DocumentName: s.name, Schemas: s.schemas}
	for _, t := range s.opts.docTransforms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := t(ctx, doc, dctx); err != nil {
			return nil, err
		}
	}

	// Always last, never configurable away.
	deduplicateSchemas(doc, s.schemas)

	if s.opts.cache {
		s.cached = doc
	}
	return doc, nil
}

// sortedTags converts the accumulated tag name set into a deterministic
// tag list. Identical names from different operations collapse to one.
func sortedTags(set map[string]bool) []Tag {
	if len(set) == 0 {
		return nil
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	tags := make([]Tag, len(names))
	for i, name := range names {
		tags[i] = Tag{Name: name}
	}
	return tags
}
