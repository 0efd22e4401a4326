package grpcmapping

import (
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// decodeMessage eagerly converts a protoreflect.Message into a plain Go
// value (map[string]any, with nested messages/lists recursively decoded)
// so internal/valuemapping's reflection Cursor can walk it the same way it
// walks any other Go value — grounded on the teacher's
// Runtime.handleResponse/handleValue (internal/grpcrt/runtime.go), adapted
// to decode eagerly rather than leaving nested fields as live
// protoreflect.Message values for later lazy resolution, since this
// engine's Cursor has no protoreflect-aware variant of its own.
func decodeMessage(msg protoreflect.Message) map[string]any {
	out := make(map[string]any)
	fields := msg.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		fd := fields.Get(i)
		name := string(fd.JSONName())
		if fd.Cardinality() != protoreflect.Repeated && fd.Kind() == protoreflect.MessageKind && !msg.Has(fd) {
			out[name] = nil
			continue
		}
		v := msg.Get(fd)
		if fd.Cardinality() == protoreflect.Repeated {
			if fd.IsMap() {
				out[name] = decodeMap(fd, v.Map())
				continue
			}
			out[name] = decodeList(fd, v.List())
			continue
		}
		out[name] = decodeScalarOrMessage(fd, v)
	}
	return out
}

func decodeList(fd protoreflect.FieldDescriptor, list protoreflect.List) []any {
	out := make([]any, list.Len())
	for i := 0; i < list.Len(); i++ {
		out[i] = decodeScalarOrMessage(fd, list.Get(i))
	}
	return out
}

func decodeMap(fd protoreflect.FieldDescriptor, m protoreflect.Map) map[string]any {
	out := make(map[string]any, m.Len())
	valueFd := fd.MapValue()
	m.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		out[k.String()] = decodeScalarOrMessage(valueFd, v)
		return true
	})
	return out
}

func decodeScalarOrMessage(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		return v.Bool()
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return int32(v.Int())
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return v.Int()
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint32(v.Uint())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.FloatKind:
		return float32(v.Float())
	case protoreflect.DoubleKind:
		return v.Float()
	case protoreflect.StringKind:
		return v.String()
	case protoreflect.BytesKind:
		return v.Bytes()
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int32(v.Enum())
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return decodeMessage(v.Message())
	default:
		return nil
	}
}

// encodeRequest populates a freshly-allocated request message from a
// GraphQL-argument map, matching arguments to fields by JSON name — the
// scalar-coercion half of the teacher's setMessageFieldsByJSON
// (internal/grpcrt/runtime.go), trimmed to what a Select's Args ever carry
// (scalars, enums-as-strings, and lists of those); nested input-object
// arguments are out of scope here the same way query elaboration itself is
// (spec.md's non-goals), since this engine receives already-coerced
// argument values rather than re-parsing GraphQL input literals.
func encodeRequest(desc protoreflect.MessageDescriptor, args map[string]any) protoreflect.Message {
	req := dynamicpb.NewMessage(desc)
	fields := desc.Fields()
	byJSON := make(map[string]protoreflect.FieldDescriptor, fields.Len())
	for i := 0; i < fields.Len(); i++ {
		f := fields.Get(i)
		byJSON[string(f.JSONName())] = f
	}
	for name, value := range args {
		fd, ok := byJSON[name]
		if !ok || value == nil {
			continue
		}
		if fd.Cardinality() == protoreflect.Repeated {
			if items, ok := value.([]any); ok {
				list := req.Mutable(fd).List()
				for _, item := range items {
					if pv, ok := encodeScalar(fd, item); ok {
						list.Append(pv)
					}
				}
				req.Set(fd, protoreflect.ValueOfList(list))
			}
			continue
		}
		if pv, ok := encodeScalar(fd, value); ok {
			req.Set(fd, pv)
		}
	}
	return req
}

func encodeScalar(fd protoreflect.FieldDescriptor, v any) (protoreflect.Value, bool) {
	switch fd.Kind() {
	case protoreflect.BoolKind:
		if b, ok := v.(bool); ok {
			return protoreflect.ValueOfBool(b), true
		}
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		if n, ok := asInt(v); ok {
			return protoreflect.ValueOfInt32(int32(n)), true
		}
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		if n, ok := asInt(v); ok {
			return protoreflect.ValueOfInt64(n), true
		}
	case protoreflect.FloatKind:
		if f, ok := asFloat(v); ok {
			return protoreflect.ValueOfFloat32(float32(f)), true
		}
	case protoreflect.DoubleKind:
		if f, ok := asFloat(v); ok {
			return protoreflect.ValueOfFloat64(f), true
		}
	case protoreflect.StringKind:
		if s, ok := v.(string); ok {
			return protoreflect.ValueOfString(s), true
		}
	case protoreflect.EnumKind:
		if s, ok := v.(string); ok {
			if val := fd.Enum().Values().ByName(protoreflect.Name(s)); val != nil {
				return protoreflect.ValueOfEnum(val.Number()), true
			}
		}
	}
	return protoreflect.Value{}, false
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return asIntAsFloat(v)
}

func asIntAsFloat(v any) (float64, bool) {
	if n, ok := asInt(v); ok {
		return float64(n), true
	}
	return 0, false
}
