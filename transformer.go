package minapi

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
)

// deduplicateSchemas is the final, mandatory document pass: it finds
// structurally identical inline schemas used by two or more locations,
// promotes each to the components section, and rewrites the inline
// occurrences as references. Runs after all user transformers so promoted
// names are stable in the finished document.
func deduplicateSchemas(doc *Document, schemas *SchemaService) {
	occurrences := make(map[string][]*JSONSchema)
	order := make([]string, 0)

	collect := func(s *JSONSchema) {
		if s == nil || s.Ref != "" || !isPromotable(s) {
			return
		}
		fp := schemaFingerprint(s)
		if fp == "" {
			return
		}
		if _, seen := occurrences[fp]; !seen {
			order = append(order, fp)
		}
		occurrences[fp] = append(occurrences[fp], s)
	}

	walkDocumentSchemas(doc, collect)

	var promoted map[string]*JSONSchema
	used := make(map[string]bool)

	for _, fp := range order {
		sites := occurrences[fp]
		if len(sites) < 2 {
			continue
		}

		name := componentNameFor(fp, schemas, used)
		used[name] = true

		if promoted == nil {
			promoted = make(map[string]*JSONSchema)
		}
		shared := *sites[0]
		promoted[name] = &shared

		ref := JSONSchema{Ref: "#/components/schemas/" + name}
		for _, site := range sites {
			*site = ref
		}
	}

	if promoted != nil {
		if doc.Components == nil {
			doc.Components = &Components{}
		}
		if doc.Components.Schemas == nil {
			doc.Components.Schemas = make(map[string]*JSONSchema)
		}
		for name, s := range promoted {
			doc.Components.Schemas[name] = s
		}
	}
}

// isPromotable reports whether a schema is worth extracting: composite
// shapes only, never bare scalars.
func isPromotable(s *JSONSchema) bool {
	return len(s.Properties) > 0 || s.Items != nil || len(s.AllOf) > 0
}

// componentNameFor picks a component name for a promoted schema: the Go
// type name recorded by the schema service when one exists, else a name
// derived from the schema's fingerprint. Collisions get a numeric suffix.
func componentNameFor(fp string, schemas *SchemaService, used map[string]bool) string {
	name, ok := schemas.componentName(fp)
	if !ok || name == "" {
		sum := sha256.Sum256([]byte(fp))
		name = "Schema" + hex.EncodeToString(sum[:4])
	}
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if !used[candidate] {
			return candidate
		}
	}
}

// walkDocumentSchemas visits every schema slot in the document in a
// deterministic order: paths sorted, methods sorted, then parameters,
// request body, and responses per operation.
func walkDocumentSchemas(doc *Document, visit func(*JSONSchema)) {
	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		item := doc.Paths[p]

		methods := make([]string, 0, len(item))
		for m := range item {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, m := range methods {
			op := item[m]
			if op == nil {
				continue
			}

			for _, param := range op.Parameters {
				visit(param.Schema)
			}

			if op.RequestBody != nil {
				visitContent(op.RequestBody.Content, visit)
			}

			statuses := make([]string, 0, len(op.Responses))
			for s := range op.Responses {
				statuses = append(statuses, s)
			}
			sort.Strings(statuses)
			for _, s := range statuses {
				if resp := op.Responses[s]; resp != nil {
					visitContent(resp.Content, visit)
				}
			}
		}
	}
}

func visitContent(content map[string]*MediaType, visit func(*JSONSchema)) {
	cts := make([]string, 0, len(content))
	for ct := range content {
		cts = append(cts, ct)
	}
	sort.Strings(cts)
	for _, ct := range cts {
		if mt := content[ct]; mt != nil {
			visit(mt.Schema)
		}
	}
}
