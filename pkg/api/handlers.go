package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/routesim/pkg/buildinfo"
	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/graph"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/pipeline"
	"github.com/matzehuels/routesim/pkg/routing"
)

// =============================================================================
// Request and Response Bodies
// =============================================================================

// AddNodeRequest is the optional body of POST /nodes.
type AddNodeRequest struct {
	Link   *network.NodeID `json:"link,omitempty"`
	Weight int             `json:"weight,omitempty"`
}

// EdgeRequest is the body of PUT /edges/{a}/{b}.
type EdgeRequest struct {
	Weight int `json:"weight"`
}

// RouteRequest is the body of POST /route. An empty algorithm selects the
// default; a missing destination asks for the full routing table.
type RouteRequest struct {
	Algorithm   string          `json:"algorithm,omitempty"`
	Source      network.NodeID  `json:"source"`
	Destination *network.NodeID `json:"destination,omitempty"`
	Refresh     bool            `json:"refresh,omitempty"`
}

// MatrixResponse is the body of GET /matrix.
type MatrixResponse struct {
	Capacity int            `json:"capacity"`
	Matrix   network.Matrix `json:"matrix"`
}

// ImportResponse summarizes the network installed by POST /import.
type ImportResponse struct {
	Capacity int `json:"capacity"`
	Nodes    int `json:"nodes"`
	Edges    int `json:"edges"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) listNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nodeRecords(s.Network().Nodes()))
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := decodeOptional(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	n := s.Network()
	var (
		id  network.NodeID
		err error
	)
	if req.Link != nil {
		id, err = n.AddLinkedNode(*req.Link, req.Weight)
	} else {
		id, err = n.AddNode()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Debug("router added", "id", id, "link", req.Link)
	writeJSON(w, http.StatusCreated, graph.Node{ID: id, Label: network.DefaultLabel(id)})
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	id, err := nodeParam(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Network().RemoveNode(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("router removed", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listEdges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, edgeRecords(s.Network().Edges()))
}

func (s *Server) upsertEdge(w http.ResponseWriter, r *http.Request) {
	a, b, err := edgeParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req EdgeRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.Network().UpsertEdge(a, b, req.Weight); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("link set", "a", a, "b", b, "weight", req.Weight)
	writeJSON(w, http.StatusOK, graph.Edge{ID: graph.EdgeID(a, b), Source: a, Target: b, Weight: req.Weight})
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	a, b, err := edgeParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	removed := s.Network().RemoveEdge(a, b)
	s.logger.Debug("link removed", "a", a, "b", b, "existed", removed)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) matrix(w http.ResponseWriter, r *http.Request) {
	n := s.Network()
	writeJSON(w, http.StatusOK, MatrixResponse{Capacity: n.Capacity(), Matrix: n.Snapshot()})
}

func (s *Server) route(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := pipeline.Options{
		Source:      req.Source,
		Destination: req.Destination,
		Refresh:     req.Refresh,
	}
	if req.Algorithm != "" {
		alg, err := routing.ParseAlgorithm(req.Algorithm)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Algorithm = alg
	}

	res, hit, err := s.runner.Route(r.Context(), s.Network(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graph.FromNetwork(s.Network()))
}

func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	n, err := graph.ReadNetwork(http.MaxBytesReader(w, r.Body, maxBodyBytes), graph.ImportOptions{Capacity: s.capacity})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.replace(n)
	s.logger.Info("workspace replaced", "routers", n.NodeCount(), "links", n.EdgeCount())
	writeJSON(w, http.StatusOK, ImportResponse{
		Capacity: n.Capacity(),
		Nodes:    n.NodeCount(),
		Edges:    n.EdgeCount(),
	})
}

// =============================================================================
// Helpers
// =============================================================================

func nodeRecords(nodes []network.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		out[i] = graph.Node{ID: n.ID, Label: n.Label}
	}
	return out
}

func edgeRecords(edges []network.Edge) []graph.Edge {
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		out[i] = graph.Edge{ID: graph.EdgeID(e.Source, e.Target), Source: e.Source, Target: e.Target, Weight: e.Weight}
	}
	return out
}

func nodeParam(r *http.Request, name string) (network.NodeID, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.ErrCodeInvalidInput, "%s must be a router id, got %q", name, raw)
	}
	return network.NodeID(id), nil
}

func edgeParams(r *http.Request) (network.NodeID, network.NodeID, error) {
	a, err := nodeParam(r, "a")
	if err != nil {
		return 0, 0, err
	}
	b, err := nodeParam(r, "b")
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// decodeOptional decodes a JSON body, leaving v untouched when the body is
// empty.
func decodeOptional(r *http.Request, v any) error {
	err := decodeJSON(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
