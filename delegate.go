package minapi

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// handlerParam is one declared handler parameter and where its value
// comes from at request time.
type handlerParam struct {
	name   string
	typ    reflect.Type
	source ParameterSource
}

// handlerInfo is the reflected shape of an endpoint handler, computed once
// at registration.
type handlerInfo struct {
	fn       reflect.Value
	typ      reflect.Type
	takesCtx bool
	params   []handlerParam
	hasValue bool
	hasError bool
}

var (
	ctxType   = reflect.TypeFor[context.Context]()
	errorType = reflect.TypeFor[error]()
)

// parseHandler validates the handler function against the route pattern.
// Parameters map to route variables positionally; paramNames (from
// WithParams) overrides the mapping and routes unmatched names to the
// query string.
func parseHandler(handler any, pattern string, paramNames []string) (handlerInfo, error) {
	fn := reflect.ValueOf(handler)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return handlerInfo{}, fmt.Errorf("handler for %q must be a func, got %T", pattern, handler)
	}

	h := handlerInfo{fn: fn, typ: fn.Type()}

	start := 0
	if h.typ.NumIn() > 0 && h.typ.In(0) == ctxType {
		h.takesCtx = true
		start = 1
	}

	vars := patternVariables(pattern)
	arity := h.typ.NumIn() - start

	names := paramNames
	if names == nil {
		if arity != len(vars) {
			return handlerInfo{}, fmt.Errorf(
				"handler for %q declares %d bindable parameters but the pattern has %d variables; use WithParams to name query-bound parameters",
				pattern, arity, len(vars))
		}
		names = vars
	} else if len(names) != arity {
		return handlerInfo{}, fmt.Errorf(
			"WithParams names %d parameters but handler for %q declares %d", len(names), pattern, arity)
	}

	isVar := make(map[string]bool, len(vars))
	for _, v := range vars {
		isVar[v] = true
	}

	for i := range arity {
		source := SourceQuery
		if isVar[names[i]] {
			source = SourcePath
		}
		h.params = append(h.params, handlerParam{
			name:   names[i],
			typ:    h.typ.In(start + i),
			source: source,
		})
	}

	switch h.typ.NumOut() {
	case 0:
	case 1:
		if h.typ.Out(0) == errorType {
			h.hasError = true
		} else {
			h.hasValue = true
		}
	case 2:
		if h.typ.Out(1) != errorType {
			return handlerInfo{}, fmt.Errorf("handler for %q: second return value must be error", pattern)
		}
		h.hasValue = true
		h.hasError = true
	default:
		return handlerInfo{}, fmt.Errorf("handler for %q returns %d values, want at most 2", pattern, h.typ.NumOut())
	}

	return h, nil
}

// patternVariables extracts {name} segments from a mux pattern in order
// of appearance. Wildcard suffixes ({name...}) map to plain names.
func patternVariables(pattern string) []string {
	var vars []string
	rest := pattern
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			return vars
		}
		rest = rest[open+1:]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return vars
		}
		name := strings.TrimSuffix(rest[:end], "...")
		if name != "" && name != "$" {
			vars = append(vars, name)
		}
		rest = rest[end+1:]
	}
}

// bindArguments extracts the handler's argument values from the request,
// converting each raw string to the parameter's declared type. A missing
// query value leaves the slot at its zero value.
func (h handlerInfo) bindArguments(r *http.Request) ([]any, error) {
	args := make([]any, len(h.params))
	for i, p := range h.params {
		var raw string
		switch p.source {
		case SourcePath:
			raw = r.PathValue(p.name)
		case SourceQuery:
			raw = r.URL.Query().Get(p.name)
		}

		if raw == "" {
			args[i] = reflect.Zero(p.typ).Interface()
			continue
		}

		v, err := convertValue(raw, p.typ)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBindArgument, p.name, err)
		}
		args[i] = v
	}
	return args, nil
}

// convertValue converts a raw route/query string to the given type.
func convertValue(raw string, t reflect.Type) (any, error) {
	if t == reflect.TypeFor[time.Duration]() {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	v := reflect.New(t).Elem()

	//exhaustive:ignore
	switch t.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, t.Bits())
		if err != nil {
			return nil, err
		}
		v.SetFloat(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		v.SetBool(b)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", t)
	}

	return v.Interface(), nil
}

// call invokes the handler with the current argument values. Arguments
// rewritten by filters are type-checked against the declared signature.
func (h handlerInfo) call(ctx context.Context, args []any) (any, error) {
	in := make([]reflect.Value, 0, len(args)+1)
	if h.takesCtx {
		in = append(in, reflect.ValueOf(ctx))
	}

	for i, a := range args {
		pt := h.params[i].typ
		if a == nil {
			in = append(in, reflect.Zero(pt))
			continue
		}
		rv := reflect.ValueOf(a)
		if !rv.Type().AssignableTo(pt) {
			return nil, fmt.Errorf("argument %d: cannot use %T as %s", i, a, pt)
		}
		in = append(in, rv)
	}

	out := h.fn.Call(in)

	var result any
	var err error
	switch {
	case h.hasValue && h.hasError:
		result = out[0].Interface()
		if e := out[1].Interface(); e != nil {
			err = e.(error)
		}
	case h.hasValue:
		result = out[0].Interface()
	case h.hasError:
		if e := out[0].Interface(); e != nil {
			err = e.(error)
		}
	}
	return result, err
}

// delegate is the per-endpoint request entry point: bind arguments, drive
// the filter chain (or call the handler directly when there is none), and
// render the result.
type delegate struct {
	h        handlerInfo
	pipeline FilterInvocation
	status   int
	errFn    ErrorHandler
}

// newDelegate builds the request entry point for one endpoint. The filter
// pipeline is composed here, once, so factory build-time work is never
// repeated per request.
func newDelegate(h handlerInfo, fctx FilterFactoryContext, factories []FilterFactory, status int, errFn ErrorHandler) *delegate {
	d := &delegate{h: h, status: status, errFn: errFn}

	if len(factories) > 0 {
		terminal := func(ic *InvocationContext) (any, error) {
			return h.call(ic.Request().Context(), ic.args)
		}
		d.pipeline = buildFilterPipeline(fctx, factories, terminal)
	}

	return d
}

func (d *delegate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	args, err := d.h.bindArguments(r)
	if err != nil {
		d.writeError(w, r, Error(http.StatusBadRequest, err.Error()))
		return
	}

	var result any
	if d.pipeline == nil {
		// No filters: call the handler without building a context.
		result, err = d.h.call(r.Context(), args)
	} else {
		ic := newInvocationContext(w, r, args)
		result, err = d.pipeline(ic)
	}

	if err != nil {
		d.writeError(w, r, err)
		return
	}

	writeResult(w, result, d.status)
}

func (d *delegate) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if d.errFn != nil {
		d.errFn(w, r, err)
		return
	}
	writeErrorResponse(w, err)
}
