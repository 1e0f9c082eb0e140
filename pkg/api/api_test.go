package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/routesim/pkg/buildinfo"
	"github.com/matzehuels/routesim/pkg/cache"
	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/observability"
	"github.com/matzehuels/routesim/pkg/pipeline"
	"github.com/matzehuels/routesim/pkg/routing"
)

func newTestServer(t *testing.T, n *network.Network) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(NewServer(n, pipeline.NewRunner(c, nil, logger), logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: status = %d, want %d (%s)",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, srv, http.MethodGet, "/healthz", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[map[string]string](t, resp); got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestVersion(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := do(t, srv, http.MethodGet, "/version", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decode[buildinfo.Info](t, resp); got.Version != buildinfo.Version {
		t.Errorf("version = %+v", got)
	}
}

func TestNodes(t *testing.T) {
	srv := newTestServer(t, network.Sample())

	resp := do(t, srv, http.MethodGet, "/nodes", "")
	expectStatus(t, resp, http.StatusOK)
	if nodes := decode[[]graph.Node](t, resp); len(nodes) != 5 || nodes[4].Label != "Router 4" {
		t.Errorf("nodes = %+v", nodes)
	}

	resp = do(t, srv, http.MethodPost, "/nodes", "")
	expectStatus(t, resp, http.StatusCreated)
	if node := decode[graph.Node](t, resp); node.ID != 5 {
		t.Errorf("new id = %d, want 5", node.ID)
	}

	resp = do(t, srv, http.MethodPost, "/nodes", `{"link": 5, "weight": 4}`)
	expectStatus(t, resp, http.StatusCreated)
	if node := decode[graph.Node](t, resp); node.ID != 6 {
		t.Errorf("linked id = %d, want 6", node.ID)
	}

	resp = do(t, srv, http.MethodDelete, "/nodes/2", "")
	expectStatus(t, resp, http.StatusNoContent)

	resp = do(t, srv, http.MethodGet, "/edges", "")
	expectStatus(t, resp, http.StatusOK)
	for _, e := range decode[[]graph.Edge](t, resp) {
		if e.Source == 2 || e.Target == 2 {
			t.Errorf("edge %s survived removal of router 2", e.ID)
		}
	}

	resp = do(t, srv, http.MethodPost, "/nodes", "")
	expectStatus(t, resp, http.StatusCreated)
	if node := decode[graph.Node](t, resp); node.ID != 2 {
		t.Errorf("reused id = %d, want 2", node.ID)
	}
}

func TestEdges(t *testing.T) {
	srv := newTestServer(t, network.Sample())

	resp := do(t, srv, http.MethodPut, "/edges/4/0", `{"weight": 9}`)
	expectStatus(t, resp, http.StatusOK)
	if e := decode[graph.Edge](t, resp); e.ID != "4->0" || e.Weight != 9 {
		t.Errorf("edge = %+v", e)
	}

	resp = do(t, srv, http.MethodPut, "/edges/0/4", `{"weight": 11}`)
	expectStatus(t, resp, http.StatusOK)

	resp = do(t, srv, http.MethodGet, "/matrix", "")
	expectStatus(t, resp, http.StatusOK)
	m := decode[MatrixResponse](t, resp)
	if m.Capacity != network.DefaultCapacity || len(m.Matrix) != network.DefaultCapacity {
		t.Fatalf("matrix capacity = %d, rows = %d", m.Capacity, len(m.Matrix))
	}
	if m.Matrix[0][4] != 11 || m.Matrix[4][0] != 11 {
		t.Errorf("matrix[0][4] = %d, matrix[4][0] = %d, want 11", m.Matrix[0][4], m.Matrix[4][0])
	}

	resp = do(t, srv, http.MethodGet, "/edges", "")
	if edges := decode[[]graph.Edge](t, resp); len(edges) != 8 {
		t.Errorf("edge count = %d, want 8", len(edges))
	}

	resp = do(t, srv, http.MethodDelete, "/edges/0/4", "")
	expectStatus(t, resp, http.StatusNoContent)
	resp = do(t, srv, http.MethodDelete, "/edges/0/4", "")
	expectStatus(t, resp, http.StatusNoContent)

	resp = do(t, srv, http.MethodGet, "/matrix", "")
	if m := decode[MatrixResponse](t, resp); m.Matrix[0][4] != 0 {
		t.Errorf("matrix[0][4] = %d after removal", m.Matrix[0][4])
	}
}

func TestErrors(t *testing.T) {
	full := network.New(2)
	_, _ = full.AddNode()
	_, _ = full.AddNode()

	tests := []struct {
		name   string
		net    *network.Network
		method string
		path   string
		body   string
		status int
		code   apperr.Code
	}{
		{"missing router", nil, http.MethodDelete, "/nodes/3", "", http.StatusNotFound, apperr.ErrCodeNotFound},
		{"bad id", nil, http.MethodDelete, "/nodes/abc", "", http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"capacity", full, http.MethodPost, "/nodes", "", http.StatusConflict, apperr.ErrCodeCapacityExceeded},
		{"link to missing", nil, http.MethodPost, "/nodes", `{"link": 9, "weight": 1}`, http.StatusNotFound, apperr.ErrCodeNotFound},
		{"zero weight", nil, http.MethodPut, "/edges/0/1", `{"weight": 0}`, http.StatusBadRequest, apperr.ErrCodeInvalidEdge},
		{"self loop", nil, http.MethodPut, "/edges/1/1", `{"weight": 2}`, http.StatusBadRequest, apperr.ErrCodeInvalidEdge},
		{"weight above max", nil, http.MethodPut, "/edges/0/1", `{"weight": 2147483648}`, http.StatusBadRequest, apperr.ErrCodeInvalidEdge},
		{"huge link weight", nil, http.MethodPost, "/nodes", `{"link": 0, "weight": 9223372036854775806}`, http.StatusBadRequest, apperr.ErrCodeInvalidEdge},
		{"empty edge body", nil, http.MethodPut, "/edges/0/1", "", http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
		{"unknown field", nil, http.MethodPut, "/edges/0/1", `{"cost": 2}`, http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
		{"unknown algorithm", nil, http.MethodPost, "/route", `{"algorithm": "ospf", "source": 1}`, http.StatusBadRequest, apperr.ErrCodeInvalidInput},
		{"source out of range", nil, http.MethodPost, "/route", `{"source": 40}`, http.StatusUnprocessableEntity, apperr.ErrCodeOutOfRange},
		{"destination out of range", nil, http.MethodPost, "/route", `{"source": 1, "destination": 15}`, http.StatusUnprocessableEntity, apperr.ErrCodeOutOfRange},
		{"source not a router", nil, http.MethodPost, "/route", `{"source": 9}`, http.StatusNotFound, apperr.ErrCodeNotFound},
		{"inconsistent import", nil, http.MethodPost, "/import",
			`{"nodes":[{"id":0},{"id":1}],"edges":[{"source":0,"target":1,"weight":2},{"source":1,"target":0,"weight":3}]}`,
			http.StatusBadRequest, apperr.ErrCodeInconsistent},
		{"huge weight import", nil, http.MethodPost, "/import",
			`{"nodes":[{"id":0},{"id":1}],"edges":[{"source":0,"target":1,"weight":9223372036854775806}]}`,
			http.StatusBadRequest, apperr.ErrCodeInvalidEdge},
		{"garbage import", nil, http.MethodPost, "/import", `not json`, http.StatusBadRequest, apperr.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.net
			if n == nil {
				n = network.Sample()
			}
			srv := newTestServer(t, n)
			resp := do(t, srv, tt.method, tt.path, tt.body)
			expectStatus(t, resp, tt.status)
			body := decode[ErrorResponse](t, resp)
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", body.Code, tt.code, body.Message)
			}
			if body.Message == "" {
				t.Error("empty error message")
			}
		})
	}
}

func TestRoute(t *testing.T) {
	srv := newTestServer(t, network.Sample())

	resp := do(t, srv, http.MethodPost, "/route", `{"source": 1}`)
	expectStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	table := decode[routing.Result](t, resp)
	if table.Algorithm != routing.CentralizedAlgorithm || len(table.Routes) != 5 {
		t.Fatalf("table = %+v", table)
	}
	costs := make([]int, len(table.Routes))
	for i, r := range table.Routes {
		costs[i] = r.Cost
	}
	if want := []int{8, 0, 3, 2, 4}; !slices.Equal(costs, want) {
		t.Errorf("costs = %v, want %v", costs, want)
	}

	resp = do(t, srv, http.MethodPost, "/route", `{"algorithm": "bellman-ford", "source": 1, "destination": 4}`)
	expectStatus(t, resp, http.StatusOK)
	res := decode[routing.Result](t, resp)
	route, ok := res.Route()
	if !ok {
		t.Fatalf("no route in %+v", res)
	}
	if route.Cost != 4 || !slices.Equal(route.Path, []network.NodeID{1, 3, 4}) {
		t.Errorf("route = %+v, want [1 3 4] cost 4", route)
	}
	if res.Algorithm != routing.DecentralizedAlgorithm {
		t.Errorf("algorithm = %q", res.Algorithm)
	}

	resp = do(t, srv, http.MethodPost, "/route", `{"algorithm": "dv", "source": 1, "destination": 0}`)
	expectStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("X-Cache = %q, want HIT for the same source and topology", got)
	}
}

func TestRouteNoPath(t *testing.T) {
	srv := newTestServer(t, network.Sample())
	expectStatus(t, do(t, srv, http.MethodPost, "/nodes", ""), http.StatusCreated)

	resp := do(t, srv, http.MethodPost, "/route", `{"source": 1, "destination": 5}`)
	expectStatus(t, resp, http.StatusOK)
	res := decode[routing.Result](t, resp)
	if !res.NoPath || len(res.Routes) != 0 || len(res.Links) != 0 {
		t.Errorf("result = %+v, want no_path", res)
	}

	resp = do(t, srv, http.MethodPost, "/route", `{"source": 1, "destination": 1}`)
	res = decode[routing.Result](t, resp)
	if route, ok := res.Route(); !ok || route.Cost != 0 || res.NoPath {
		t.Errorf("self route = %+v, no_path = %v", route, res.NoPath)
	}
}

func TestExportImport(t *testing.T) {
	src := newTestServer(t, network.Sample())
	resp := do(t, src, http.MethodGet, "/export", "")
	expectStatus(t, resp, http.StatusOK)
	exported, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	dst := newTestServer(t, nil)
	resp = do(t, dst, http.MethodPost, "/import", string(exported))
	expectStatus(t, resp, http.StatusOK)
	if sum := decode[ImportResponse](t, resp); sum.Nodes != 5 || sum.Edges != 7 || sum.Capacity != network.DefaultCapacity {
		t.Errorf("import summary = %+v", sum)
	}

	resp = do(t, dst, http.MethodGet, "/export", "")
	again, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(exported, again) {
		t.Errorf("re-export differs:\n%s\nvs\n%s", exported, again)
	}
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  []string
	responses []int
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, status)
}

func (h *recordingHTTPHooks) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		h.mu.Lock()
		done := len(h.responses) >= n
		h.mu.Unlock()
		if done {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d responses", n)
}

func TestObserve(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := newTestServer(t, network.Sample())
	resp := do(t, srv, http.MethodGet, "/healthz", "")
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id")
	}
	do(t, srv, http.MethodDelete, "/nodes/12", "")

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc" {
		t.Errorf("request id = %q, want client value", got)
	}

	hooks.waitFor(t, 3)
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if want := []string{"GET /healthz", "DELETE /nodes/12", "GET /healthz"}; !slices.Equal(hooks.requests, want) {
		t.Errorf("requests = %v, want %v", hooks.requests, want)
	}
	if want := []int{200, 404, 200}; !slices.Equal(hooks.responses, want) {
		t.Errorf("responses = %v, want %v", hooks.responses, want)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.New(apperr.ErrCodeNotFound, "x"), 404},
		{apperr.New(apperr.ErrCodeInvalidName, "x"), 400},
		{apperr.New(apperr.ErrCodeCapacityExceeded, "x"), 409},
		{apperr.New(apperr.ErrCodeOutOfRange, "x"), 422},
		{apperr.New(apperr.ErrCodeInvalidPath, "x"), 400},
		{apperr.New(apperr.ErrCodeUnsupported, "x"), 400},
		{apperr.New(apperr.ErrCodeInternal, "x"), 500},
		{io.ErrUnexpectedEOF, 500},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
