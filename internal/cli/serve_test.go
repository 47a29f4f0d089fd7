package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/runigram/pkg/cache"
	"github.com/matzehuels/runigram/pkg/httputil"
	"github.com/matzehuels/runigram/pkg/morph"
	"github.com/matzehuels/runigram/pkg/observability"
	"github.com/matzehuels/runigram/pkg/pipeline"
	"github.com/matzehuels/runigram/pkg/ppm"
)

// newTestServer returns a server without a cache and with a clock that
// never sleeps.
func newTestServer(t *testing.T) (*server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := newLogger(&logs, log.DebugLevel)
	s := newServer(pipeline.NewRunner(cache.NewNullCache(), logger), logger)
	s.clock = morph.NopClock{}
	return s, &logs
}

func do(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorBody {
	t.Helper()
	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestServeHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.routes(), http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeTransform(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s.routes(), http.MethodPost, "/v1/transform?op=flip-h&op=gray", []byte(tinyPPM))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, contentTypePPM, rec.Header().Get("Content-Type"))

	g, err := ppm.DecodeBytes(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 3, g.Rows())
	assert.Equal(t, 4, g.Cols())
	// (0,3) of the source is magenta; mirrored and gray it lands at (0,0).
	px := g.At(0, 0)
	assert.Equal(t, uint8(105), px.R)
	assert.Equal(t, px.R, px.G)
	assert.Equal(t, px.G, px.B)
}

func TestServeTransformErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		code   string
	}{
		{"unknown op", "/v1/transform?op=blur", tinyPPM, http.StatusBadRequest, "INVALID_PARAMETER"},
		{"bad scale", "/v1/transform?op=scale=0x0", tinyPPM, http.StatusBadRequest, "DIMENSION_MISMATCH"},
		{"malformed body", "/v1/transform", "P3\n2 2\n255\n1 2 3\n", http.StatusBadRequest, "MALFORMED_INPUT"},
		{"wrong magic", "/v1/transform", "P6\n1 1\n255\n0 0 0\n", http.StatusBadRequest, "MALFORMED_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := do(t, s.routes(), http.MethodPost, tt.target, []byte(tt.body))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, string(decodeError(t, rec).Error.Code))
		})
	}
}

func TestServeBodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t)
	s.maxBody = 16
	h := s.routes()

	rec := do(t, h, http.MethodPost, "/v1/transform", []byte(tinyPPM))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	req, _ := json.Marshal(map[string]any{"source": tinyPPM, "steps": 2})
	rec = do(t, h, http.MethodPost, "/v1/morph", req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServeMorphStream(t *testing.T) {
	s, logs := newTestServer(t)
	req, err := json.Marshal(map[string]any{
		"source":     tinyPPM,
		"target_ops": []string{"gray"},
		"steps":      4,
	})
	require.NoError(t, err)

	rec := do(t, s.routes(), http.MethodPost, "/v1/morph", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, contentTypeNDJSON, rec.Header().Get("Content-Type"))

	_, err = uuid.Parse(rec.Header().Get(sessionHeader))
	assert.NoError(t, err, "session header should be a UUID")

	frames := decodeFrames(t, rec.Body.String())
	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
	}
	assert.Equal(t, [3]uint8{255, 0, 255}, frames[0].Pixels[0][3])
	last := frames[4].Pixels[0][3]
	assert.Equal(t, last[0], last[1])
	assert.Equal(t, last[1], last[2])

	assert.Contains(t, logs.String(), "morph streamed")
}

func TestServeMorphWithTarget(t *testing.T) {
	s, _ := newTestServer(t)
	req, _ := json.Marshal(map[string]any{
		"source": tinyPPM,
		"target": "P3\n2 1\n255\n10 20 30 200 100 50\n",
		"steps":  1,
	})

	rec := do(t, s.routes(), http.MethodPost, "/v1/morph", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	frames := decodeFrames(t, rec.Body.String())
	require.Len(t, frames, 2)
	assert.Equal(t, 3, frames[1].Rows)
	assert.Equal(t, 4, frames[1].Cols)
	assert.Equal(t, [3]uint8{200, 100, 50}, frames[1].Pixels[2][3])
}

func TestServeMorphErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", `{"source":`, "MALFORMED_INPUT"},
		{"zero steps", `{"source":"P3 1 1 255 0 0 0","steps":0}`, "INVALID_PARAMETER"},
		{"negative delay", `{"source":"P3 1 1 255 0 0 0","steps":1,"delay_ms":-5}`, "INVALID_PARAMETER"},
		{"missing source", `{"steps":2}`, "INVALID_PARAMETER"},
		{"bad source", `{"source":"P3 1 1 255 0 0","steps":2}`, "MALFORMED_INPUT"},
		{"bad op", `{"source":"P3 1 1 255 0 0 0","steps":2,"target_ops":["sepia"]}`, "MALFORMED_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			rec := do(t, s.routes(), http.MethodPost, "/v1/morph", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, string(decodeError(t, rec).Error.Code))
			assert.Empty(t, rec.Header().Get(sessionHeader))
		})
	}
}

func TestServeMorphClientGone(t *testing.T) {
	s, logs := newTestServer(t)
	body, _ := json.Marshal(map[string]any{"source": tinyPPM, "steps": 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/v1/morph", bytes.NewReader(body)).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	// Headers are committed before the first frame, so the stream just ends.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Less(t, strings.Count(rec.Body.String(), "\n"), 4)
	assert.Contains(t, logs.String(), "morph stream ended early")
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestServeReportsHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, _ := newTestServer(t)
	h := s.routes()
	do(t, h, http.MethodGet, "/healthz", nil)
	do(t, h, http.MethodPost, "/v1/transform?op=nope", []byte(tinyPPM))

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	assert.Equal(t, []string{"GET /healthz", "POST /v1/transform"}, hooks.requests)
	assert.Equal(t, []int{http.StatusOK, http.StatusBadRequest}, hooks.statuses)
}
