package minapi

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Result is implemented by handler return values that own their rendering
// (redirects, streams, custom content types). Everything else is written
// by the framework: strings and byte slices as plain text, nil as an empty
// body, any other value as JSON.
type Result interface {
	WriteResponse(w http.ResponseWriter, status int) error
}

// ErrorHandler is a custom error response writer.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// writeResult renders a terminal handler value to the response. A nil
// result is legal and renders as an empty body with the default status.
func writeResult(w http.ResponseWriter, result any, status int) {
	if status == 0 {
		status = http.StatusOK
	}

	switch v := result.(type) {
	case nil:
		w.WriteHeader(status)

	case Result:
		//nolint:errcheck,gosec // best-effort once headers may be written
		v.WriteResponse(w, status)

	case string:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		//nolint:errcheck,gosec // best-effort after WriteHeader
		w.Write([]byte(v))

	case []byte:
		w.Header().Set("Content-Type", "application/octet-stream")
		w.WriteHeader(status)
		//nolint:errcheck,gosec // best-effort after WriteHeader
		w.Write(v)

	default:
		if sc, ok := result.(StatusCoder); ok {
			status = sc.StatusCode()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
		json.NewEncoder(w).Encode(result)
	}
}

// writeErrorResponse writes an error as an RFC 9457 problem details response.
func writeErrorResponse(w http.ResponseWriter, err error) {
	status := ErrorStatus(err)

	var pd *ProblemDetail
	if !errors.As(err, &pd) {
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(pd)
}

// Redirect is returned from a handler to issue an HTTP redirect.
type Redirect struct {
	URL    string
	Status int
}

// WriteResponse implements Result.
func (rd *Redirect) WriteResponse(w http.ResponseWriter, _ int) error {
	status := rd.Status
	if status == 0 {
		status = http.StatusFound
	}
	w.Header().Set("Location", rd.URL)
	w.WriteHeader(status)
	return nil
}
