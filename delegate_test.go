package minapi_test

import (
	"context"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eerhardt/minapi"
	"github.com/eerhardt/minapi/apitest"
)

func TestDelegate_pathParameter(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/hello/{name}", func(name string) string {
		return "Hello, " + name + "!"
	})

	c := apitest.NewClient(t, app)
	resp := c.Get(t, "/hello/Ada")

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "Hello, Ada!", resp.Text())
	assert.Contains(t, resp.Headers.Get("Content-Type"), "text/plain")
}

func TestDelegate_typedPathParameter(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/items/{id}", func(id int) int {
		return id * 2
	})

	c := apitest.NewClient(t, app)

	resp := c.Get(t, "/items/21")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, "42", resp.Text())

	// Conversion failure is a client error.
	resp = c.Get(t, "/items/abc")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestDelegate_queryParameters(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/search", func(q string, limit int) map[string]any {
		return map[string]any{"q": q, "limit": limit}
	}, minapi.WithParams("q", "limit"))

	c := apitest.NewClient(t, app)
	resp := c.Get(t, "/search?q=tea&limit=5")

	require.Equal(t, http.StatusOK, resp.Status)

	var out map[string]any
	resp.JSON(t, &out)
	assert.Equal(t, "tea", out["q"])
	assert.EqualValues(t, 5, out["limit"])
}

func TestDelegate_missingQueryIsZeroValue(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/search", func(limit int) int { return limit },
		minapi.WithParams("limit"))

	c := apitest.NewClient(t, app)
	resp := c.Get(t, "/search")

	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, "0", resp.Text())
}

func TestDelegate_contextParameter(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/ctx/{name}", func(ctx context.Context, name string) string {
		if ctx == nil {
			return "no context"
		}
		return name
	})

	c := apitest.NewClient(t, app)
	resp := c.Get(t, "/ctx/ok")

	assert.Equal(t, "ok", resp.Text())
}

func TestDelegate_nilResult(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/nothing", func() {})
	minapi.Get(app, "/err-only", func() error { return nil })

	c := apitest.NewClient(t, app)

	resp := c.Get(t, "/nothing")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)

	resp = c.Get(t, "/err-only")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestDelegate_jsonResult(t *testing.T) {
	t.Parallel()

	type Item struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	app := minapi.New()
	minapi.Get(app, "/items/{id}", func(id int) (Item, error) {
		return Item{ID: id, Name: "tea"}, nil
	})

	c := apitest.NewClient(t, app)
	resp := c.Get(t, "/items/7")

	require.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "application/json", resp.Headers.Get("Content-Type"))

	var item Item
	resp.JSON(t, &item)
	assert.Equal(t, Item{ID: 7, Name: "tea"}, item)
}

func TestDelegate_handlerError(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/boom", func() (string, error) {
		return "", minapi.Error(http.StatusTeapot, "short and stout")
	})

	c := apitest.NewClient(t, app)
	resp := c.Get(t, "/boom")

	assert.Equal(t, http.StatusTeapot, resp.Status)
	assert.Equal(t, "application/problem+json", resp.Headers.Get("Content-Type"))

	var pd minapi.ProblemDetail
	resp.JSON(t, &pd)
	assert.Equal(t, http.StatusTeapot, pd.Status)
	assert.Equal(t, "short and stout", pd.Detail)
}

func TestDelegate_customStatus(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Post(app, "/items", func() string { return "made" },
		minapi.WithStatus(http.StatusCreated))

	c := apitest.NewClient(t, app)
	resp := c.Post(t, "/items", nil)

	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, "made", resp.Text())
}

func TestDelegate_redirectResult(t *testing.T) {
	t.Parallel()

	app := minapi.New()
	minapi.Get(app, "/old", func() *minapi.Redirect {
		return &minapi.Redirect{URL: "/new", Status: http.StatusMovedPermanently}
	})

	c := apitest.NewClient(t, app)
	client := c.Server.Client()
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, c.Server.URL+"/old", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { require.NoError(t, resp.Body.Close()) }()

	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/new", resp.Header.Get("Location"))
}

func TestPatternVariables(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"name"}, minapi.PatternVariables("/hello/{name}"))
	assert.Equal(t, []string{"a", "b"}, minapi.PatternVariables("/x/{a}/y/{b}"))
	assert.Equal(t, []string{"rest"}, minapi.PatternVariables("/files/{rest...}"))
	assert.Empty(t, minapi.PatternVariables("/plain"))
	assert.Empty(t, minapi.PatternVariables("/exact/{$}"))
}

func TestConvertValue(t *testing.T) {
	t.Parallel()

	v, err := minapi.ConvertValue("15s", reflect.TypeFor[time.Duration]())
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, v)

	v, err = minapi.ConvertValue("true", reflect.TypeFor[bool]())
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = minapi.ConvertValue("2.5", reflect.TypeFor[float64]())
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, err = minapi.ConvertValue("x", reflect.TypeFor[[]string]())
	require.Error(t, err)
}

func TestRegister_signatureMismatchPanics(t *testing.T) {
	t.Parallel()

	app := minapi.New()

	assert.Panics(t, func() {
		// Two bindable params, one pattern variable, no WithParams.
		minapi.Get(app, "/x/{a}", func(a, b string) string { return a + b })
	})

	assert.Panics(t, func() {
		minapi.Get(app, "/x", "not a func")
	})
}
