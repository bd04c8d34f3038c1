// Package transfer moves transaction lists in and out of files. Each format
// is a Codec registered by name.
package transfer

import (
	"io"
	"sort"
	"strings"

	"github.com/monedero-app/monedero/internal/model"
)

// Codec encodes and decodes a transaction list in one file format.
type Codec interface {
	Format() string
	Encode(w io.Writer, txs []model.Transaction) error
	Decode(r io.Reader) ([]model.Transaction, error)
}

// Registry holds named codecs.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry creates an empty codec registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds a codec. Panics on duplicate format.
func (r *Registry) Register(c Codec) {
	key := strings.ToLower(c.Format())
	if _, ok := r.codecs[key]; ok {
		panic("duplicate transfer format: " + key)
	}
	r.codecs[key] = c
}

// Get returns the codec for format, or nil.
func (r *Registry) Get(format string) Codec {
	return r.codecs[strings.ToLower(strings.TrimSpace(format))]
}

// Formats lists the registered format names, sorted.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with the built-in codecs.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CSV{})
	r.Register(JSON{})
	return r
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(path[i+1:])
}
