package routing

import (
	"strings"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
)

// Algorithm selects the solver used by a computation.
type Algorithm string

const (
	// CentralizedAlgorithm is the link-state computation (Dijkstra).
	CentralizedAlgorithm Algorithm = "centralized"
	// DecentralizedAlgorithm is the distance-vector computation (Bellman-Ford).
	DecentralizedAlgorithm Algorithm = "decentralized"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = CentralizedAlgorithm

var algorithmAliases = map[string]Algorithm{
	"centralized":     CentralizedAlgorithm,
	"dijkstra":        CentralizedAlgorithm,
	"ls":              CentralizedAlgorithm,
	"link-state":      CentralizedAlgorithm,
	"decentralized":   DecentralizedAlgorithm,
	"bellman-ford":    DecentralizedAlgorithm,
	"dv":              DecentralizedAlgorithm,
	"distance-vector": DecentralizedAlgorithm,
}

// Algorithms returns the canonical algorithm names.
func Algorithms() []Algorithm {
	return []Algorithm{CentralizedAlgorithm, DecentralizedAlgorithm}
}

// ParseAlgorithm resolves a name or alias case-insensitively.
func ParseAlgorithm(s string) (Algorithm, error) {
	if a, ok := algorithmAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return a, nil
	}
	return "", apperr.New(apperr.ErrCodeInvalidInput,
		"unknown algorithm %q (want centralized or decentralized)", s)
}

// String returns the canonical name.
func (a Algorithm) String() string { return string(a) }

// Title returns a display name such as "Centralized (Dijkstra)".
func (a Algorithm) Title() string {
	switch a {
	case CentralizedAlgorithm:
		return "Centralized (Dijkstra)"
	case DecentralizedAlgorithm:
		return "Decentralized (Bellman-Ford)"
	}
	return string(a)
}

// UnmarshalText accepts any name ParseAlgorithm understands, so JSON and TOML
// input may use the aliases.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Solver is the signature shared by Centralized and Decentralized.
type Solver func(m network.Matrix, source network.NodeID) (*ShortestPaths, error)

// Solver returns the solver function for a.
func (a Algorithm) Solver() (Solver, error) {
	switch a {
	case CentralizedAlgorithm:
		return Centralized, nil
	case DecentralizedAlgorithm:
		return Decentralized, nil
	}
	return nil, apperr.New(apperr.ErrCodeInvalidInput, "unknown algorithm %q", string(a))
}
