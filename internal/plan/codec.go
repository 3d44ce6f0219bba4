package plan

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// LibraryVersion is the wire format version written by this package.
const LibraryVersion = 1

// Library is the stable wire form of a template collection.
type Library struct {
	Version   int         `json:"version"`
	Templates []*Template `json:"templates"`
}

// NewLibrary builds a library document from a template map, templates sorted
// by ID so the output is deterministic.
func NewLibrary(templates map[TemplateID]*Template) *Library {
	lib := &Library{Version: LibraryVersion}
	ids := make([]TemplateID, 0, len(templates))
	for id := range templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		lib.Templates = append(lib.Templates, templates[id].Clone())
	}
	return lib
}

// Encode writes the library as indented JSON.
func (l *Library) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encoding library: %w", err)
	}
	return nil
}

// DecodeLibrary parses a library document and checks each template for a
// recognized discriminator and well-formed variant fields.
func DecodeLibrary(r io.Reader) (*Library, error) {
	var lib Library
	dec := json.NewDecoder(r)
	if err := dec.Decode(&lib); err != nil {
		return nil, fmt.Errorf("decoding library: %w", err)
	}
	for i, t := range lib.Templates {
		if err := CheckWireTemplate(t); err != nil {
			return nil, fmt.Errorf("template %d (%s): %w", i, t.ID, err)
		}
	}
	return &lib, nil
}

// CheckWireTemplate validates the structural constraints the wire format
// promises: a known discriminator, no container ledgers, no atomic segments,
// non-negative durations and quantities.
func CheckWireTemplate(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("missing id")
	}
	switch t.Kind {
	case KindAtomic:
		if len(t.Segments) > 0 {
			return fmt.Errorf("atomic template carries segments")
		}
	case KindContainer:
		if len(t.WillConsume) > 0 || len(t.WillProduce) > 0 {
			return fmt.Errorf("container template carries a ledger")
		}
	default:
		return fmt.Errorf("unknown templateType %q", t.Kind)
	}
	if t.Duration < 0 {
		return fmt.Errorf("negative duration %d", t.Duration)
	}
	for _, s := range t.Segments {
		if s.Offset < 0 {
			return fmt.Errorf("segment %s has negative offset %d", s.RelationshipID, s.Offset)
		}
	}
	for name, qty := range t.WillConsume {
		if qty < 0 {
			return fmt.Errorf("willConsume[%s] is negative", name)
		}
	}
	for name, qty := range t.WillProduce {
		if qty < 0 {
			return fmt.Errorf("willProduce[%s] is negative", name)
		}
	}
	return nil
}
