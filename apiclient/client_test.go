package apiclient_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/oauth2"
)

const testAccessToken = "access-token-1"

// backend is a fake AICP API recording the last request it served
type backend struct {
	server   *httptest.Server
	hits     atomic.Int32
	lastReq  *http.Request
	lastBody []byte
}

func newBackend(t *testing.T, handler http.HandlerFunc) *backend {
	t.Helper()
	b := &backend{}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		b.lastReq = r
		b.lastBody = body
		handler(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) client(t *testing.T, opts ...apiclient.Option) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(b.server.URL, opts...)
	require.NoError(t, err)
	return c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: testAccessToken}))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNew(t *testing.T) {
	t.Run("invalid scheme", func(t *testing.T) {
		_, err := apiclient.New("ftp://example.com")
		require.Error(t, err)
	})

	t.Run("unparseable url", func(t *testing.T) {
		_, err := apiclient.New("http://[::1")
		require.Error(t, err)
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		c, err := apiclient.New("http://backend:8000/")
		require.NoError(t, err)
		require.Equal(t, "http://backend:8000", c.BaseURL())
	})
}

func TestClient_DefaultHeadersAndBearer(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	c := b.client(t, apiclient.WithHeader("X-Client", "aicp-web"))
	_, err := c.ListProjects(t.Context())
	require.NoError(t, err)

	require.Equal(t, "Bearer "+testAccessToken, b.lastReq.Header.Get("Authorization"))
	require.Equal(t, "application/json", b.lastReq.Header.Get("Content-Type"))
	require.Equal(t, "application/json", b.lastReq.Header.Get("Accept"))
	require.Equal(t, "aicp-web", b.lastReq.Header.Get("X-Client"))
}

func TestClient_BasePathPrefix(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/backend/api/programs/", r.URL.Path)
		writeJSON(w, http.StatusOK, `[]`)
	})

	c, err := apiclient.New(b.server.URL + "/backend/")
	require.NoError(t, err)
	_, err = c.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x"})).ListPrograms(t.Context())
	require.NoError(t, err)
}

func TestClient_WithTokenSourceDoesNotMutate(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	anon, err := apiclient.New(b.server.URL)
	require.NoError(t, err)
	_ = anon.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "x"}))

	_, err = anon.ListProjects(t.Context())
	require.ErrorIs(t, err, apiclient.ErrFetchProjects)
	require.Zero(t, b.hits.Load(), "no request is sent without a token")
}

func TestClient_TokenSourceError(t *testing.T) {
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[]`)
	})

	c, err := apiclient.New(b.server.URL)
	require.NoError(t, err)
	c = c.WithTokenSource(failingTokenSource{})

	projects, err := c.ListProjects(t.Context())
	require.ErrorIs(t, err, apiclient.ErrFetchProjects)
	require.Nil(t, projects)
	require.Zero(t, b.hits.Load())
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, io.ErrUnexpectedEOF
}

func TestClient_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/projects/" {
			writeJSON(w, http.StatusOK, `[]`)
			return
		}
		writeJSON(w, http.StatusInternalServerError, `{"detail":"boom"}`)
	})
	c := b.client(t, apiclient.WithTracer(tp.Tracer("test")))

	_, err := c.ListProjects(t.Context())
	require.NoError(t, err)
	_, err = c.GetProject(t.Context(), "p1")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	require.Equal(t, "GET /api/projects/", spans[0].Name())
	require.Equal(t, codes.Unset, spans[0].Status().Code)
	require.Equal(t, "GET /api/projects/{project_id}", spans[1].Name())
	require.Equal(t, codes.Error, spans[1].Status().Code)
}

func TestClient_PayloadVerbatim(t *testing.T) {
	const payload = `[{"id":"p1","name":"Demo","description":"x","program":{"id":"prog1","title":"Shorts"},"seed":42}]`
	b := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, payload)
	})

	projects, err := b.client(t).ListProjects(t.Context())
	require.NoError(t, err)

	got, err := json.Marshal(projects)
	require.NoError(t, err)
	require.JSONEq(t, payload, string(got))
}
