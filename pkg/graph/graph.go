package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to indented JSON bytes.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentTo(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a document.
// Returns an INVALID_FORMAT error for malformed input.
func UnmarshalDocument(data []byte) (Document, error) {
	return readDocumentFrom(bytes.NewReader(data))
}

// WriteDocument writes a document as JSON to an io.Writer.
func WriteDocument(doc Document, w io.Writer) error {
	return writeDocumentTo(doc, w)
}

// ReadDocument decodes a JSON document from an io.Reader.
func ReadDocument(r io.Reader) (Document, error) {
	return readDocumentFrom(r)
}

// WriteFile writes a document to a JSON file.
// The file is created with 0644 permissions.
func WriteFile(doc Document, path string) error {
	if err := apperr.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeDocumentTo(doc, f)
}

// ReadFile reads a JSON topology file.
func ReadFile(path string) (Document, error) {
	if err := apperr.ValidatePath(path); err != nil {
		return Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readDocumentFrom(f)
}

// =============================================================================
// Network Serialization API
// =============================================================================

// MarshalNetwork converts a network to interchange JSON bytes.
func MarshalNetwork(n *network.Network) ([]byte, error) {
	return MarshalDocument(FromNetwork(n))
}

// ReadNetwork decodes interchange JSON and builds a network from it.
// See ToNetwork for the consistency checks applied.
func ReadNetwork(r io.Reader, opts ImportOptions) (*network.Network, error) {
	doc, err := readDocumentFrom(r)
	if err != nil {
		return nil, err
	}
	return ToNetwork(doc, opts)
}

// ReadNetworkFile reads a topology file into a network.
func ReadNetworkFile(path string, opts ImportOptions) (*network.Network, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ToNetwork(doc, opts)
}

// WriteNetworkFile writes a network to a topology file.
func WriteNetworkFile(n *network.Network, path string) error {
	return WriteFile(FromNetwork(n), path)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeDocumentTo(doc Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readDocumentFrom(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode topology")
	}
	return doc, nil
}
