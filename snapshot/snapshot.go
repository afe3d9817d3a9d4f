// Package snapshot holds the values exchanged with the in-memory engine: a
// named database with its ordered collections and their documents.
package snapshot

import (
	"fmt"

	json2 "github.com/go-json-experiment/json"
)

// Document is one JSON object stored in a collection.
type Document = map[string]any

type Collection struct {
	Name  string     `json:"name"`
	Dirty bool       `json:"dirty"`
	Data  []Document `json:"data"`

	// Extra keeps engine fields this package does not know about.
	Extra map[string]any `json:",unknown"`
}

type Snapshot struct {
	Name          string         `json:"name"`
	SchemaVersion int            `json:"schemaVersion"`
	Options       map[string]any `json:"options,omitzero"`
	Collections   []*Collection  `json:"collections"`

	Extra map[string]any `json:",unknown"`
}

// Copy returns a deep copy of the metadata. Every collection comes back with
// an empty document list, so the result can be written as structure only.
func (s *Snapshot) Copy() *Snapshot {
	c := &Snapshot{
		Name:          s.Name,
		SchemaVersion: s.SchemaVersion,
		Options:       cloneObject(s.Options),
		Collections:   make([]*Collection, len(s.Collections)),
		Extra:         cloneObject(s.Extra),
	}
	for i, col := range s.Collections {
		if col == nil {
			col = &Collection{}
		}
		c.Collections[i] = col.WithData([]Document{})
	}
	return c
}

// WithData returns a copy of the collection metadata holding data instead of
// the original documents. The receiver is not modified.
func (c *Collection) WithData(data []Document) *Collection {
	return &Collection{
		Name:  c.Name,
		Dirty: c.Dirty,
		Data:  data,
		Extra: cloneObject(c.Extra),
	}
}

// Len returns the number of documents.
func (c *Collection) Len() int {
	return len(c.Data)
}

// EncodeMetadata serializes the structure of the snapshot, never its documents.
func EncodeMetadata(s *Snapshot) ([]byte, error) {
	return json2.Marshal(s.Copy(), json2.Deterministic(true))
}

// DecodeMetadata parses a metadata blob. Document lists found in the blob are
// dropped: documents only live in collection files.
func DecodeMetadata(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	err := json2.Unmarshal(data, s)
	if err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return s.Copy(), nil
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneObject(v)
	case []any:
		if v == nil {
			return nil
		}
		cloned := make([]any, len(v))
		for i, item := range v {
			cloned[i] = cloneValue(item)
		}
		return cloned
	default:
		return v
	}
}

func cloneObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cloned := make(map[string]any, len(m))
	for k, item := range m {
		cloned[k] = cloneValue(item)
	}
	return cloned
}
