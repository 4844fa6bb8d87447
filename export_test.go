package minapi

// Test-only exports for internal functions.
var (
	BuildFilterPipeline = buildFilterPipeline
	BuildOperation      = buildOperation
	DeduplicateSchemas  = deduplicateSchemas
	TypeToSchema        = typeToSchema
	PatternVariables    = patternVariables
	ToOpenAPIPath       = toOpenAPIPath
	ConvertValue        = convertValue
	IsStreamType        = isStreamType
)

// NewTestInvocationContext creates an InvocationContext for tests.
func NewTestInvocationContext(args []any) *InvocationContext {
	return newInvocationContext(nil, nil, args)
}
