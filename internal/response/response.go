// Package response assembles spec.md §6's external response envelope
// ({"data": ..., "errors": [...]}) from a completed problem.Result[cursor.Json].
//
// Grounded on the teacher's internal/server package (specResult/specError/
// toSpecResult in server.go), adapted because the teacher built its envelope
// from executor.ExecutionResult's plain map[string]any (field order lost to
// encoding/json's alphabetical map-key sort, which the teacher's HTTP surface
// never had to guarantee against); arborql's §5 ordering guarantee means the
// "data" object's field order must survive to the wire, so rendering walks
// protojson's orderedMap payloads directly instead of handing them to
// json.Marshal.
package response

import (
	"bytes"
	"encoding/json"

	"github.com/arborql/arborql/internal/cursor"
	"github.com/arborql/arborql/internal/problem"
	"github.com/arborql/arborql/internal/protojson"
)

// Location mirrors problem.Location's field order for the wire:
// {"line": ..., "col": ...}.
type Location struct {
	Line int `json:"line"`
	Col  int `json:"col"`
}

// Error is spec.md §6's <problem> object. Field declaration order matches
// the required rendering order: message, then locations, then path.
type Error struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      []string   `json:"path,omitempty"`
}

// Envelope is the top-level {data, errors} response object. Data is a raw
// JSON fragment (not cursor.Json) precisely so field order survives
// json.Marshal unchanged; MarshalJSON below assembles the two keys by hand
// so "data" can be omitted entirely (as opposed to rendered as null) when no
// proto ever completed to a value.
type Envelope struct {
	Data    json.RawMessage
	HasData bool
	Errors  []Error
}

// From renders a completed Result into an Envelope. Data is present iff r is
// not a pure Failure (spec.md §6: "data appears iff a proto completed to a
// non-empty value" — Warnings carries a partial value alongside problems,
// matching the "partial success" case spec.md §6 allows to coexist with
// errors).
func From(r problem.Result[cursor.Json]) Envelope {
	env := Envelope{Errors: toErrors(r.Problems())}
	if !r.IsFailure() {
		env.Data = renderValue(r.Value())
		env.HasData = true
	}
	return env
}

func toErrors(ps problem.Problems) []Error {
	if len(ps) == 0 {
		return nil
	}
	out := make([]Error, len(ps))
	for i, p := range ps {
		e := Error{Message: p.Message}
		if len(p.Locations) > 0 {
			e.Locations = make([]Location, len(p.Locations))
			for j, l := range p.Locations {
				e.Locations[j] = Location{Line: l.Line, Col: l.Col}
			}
		}
		if len(p.Path) > 0 {
			e.Path = append([]string(nil), p.Path...)
		}
		out[i] = e
	}
	return out
}

// MarshalJSON assembles the envelope by hand rather than relying on struct
// tags, since Data must be omitted entirely (not rendered as the literal
// null) when HasData is false.
func (e Envelope) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false
	if e.HasData {
		buf.WriteString(`"data":`)
		data := e.Data
		if data == nil {
			data = []byte("null")
		}
		buf.Write(data)
		wrote = true
	}
	if len(e.Errors) > 0 {
		if wrote {
			buf.WriteByte(',')
		}
		errs, err := json.Marshal(e.Errors)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"errors":`)
		buf.Write(errs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// renderValue walks a cursor.Json tree produced by the completion pass,
// preserving protojson's orderedMap field order (which plain json.Marshal
// would discard by re-sorting map keys alphabetically).
func renderValue(v cursor.Json) json.RawMessage {
	if v == nil {
		return []byte("null")
	}
	if names, values, ok := protojson.OrderedEntries(v); ok {
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, name := range names {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(name)
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(renderValue(values[i]))
		}
		buf.WriteByte('}')
		return buf.Bytes()
	}
	if list, ok := v.([]any); ok {
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range list {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.Write(renderValue(elem))
		}
		buf.WriteByte(']')
		return buf.Bytes()
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(err.Error())
	}
	return b
}
