package cache

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	// binaryPrefix marks argument values JSON could not encode and that were
	// replaced by base64 of their msgpack encoding.
	binaryPrefix = "b64:"
	// hashPrefix marks values neither JSON nor msgpack could encode; they are
	// replaced by a hash of a reflective dump.
	hashPrefix = "xxh:"
)

// canonicalKey is the JSON layout of every key. Field order is fixed by the
// struct, kwargs are pre-sorted pairs.
type canonicalKey struct {
	Callable string               `json:"callable"`
	Args     []json.RawMessage    `json:"args"`
	Kwargs   [][2]json.RawMessage `json:"kwargs"`
}

// defaultKeySerializer renders {callable, args, kwargs} as compact JSON.
// Values that are not JSON-encodable degrade to a stable binary or hashed
// form, so SerializeKey never fails.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from identity and args. When the last arg
// is a Kwargs it is emitted as name/value pairs sorted by name.
func (s *defaultKeySerializer) SerializeKey(identity string, args ...any) string {
	var kwargs Kwargs
	if n := len(args); n > 0 {
		if kw, ok := args[n-1].(Kwargs); ok {
			args, kwargs = args[:n-1], kw
		}
	}

	key := canonicalKey{
		Callable: identity,
		Args:     make([]json.RawMessage, 0, len(args)),
		Kwargs:   make([][2]json.RawMessage, 0, len(kwargs)),
	}

	for _, arg := range args {
		key.Args = append(key.Args, s.encodeValue(arg))
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		key.Kwargs = append(key.Kwargs, [2]json.RawMessage{
			quoteJSON(name),
			s.encodeValue(kwargs[name]),
		})
	}

	data, err := marshalJSON(key)
	if err != nil {
		// every part is already valid JSON, this is not expected to happen
		return identity + "::" + string(hashValue(key))
	}
	return string(data)
}

// encodeValue returns the JSON form of v, falling back to a quoted
// "b64:" msgpack string and finally to a quoted "xxh:" hash. Cyclic values
// skip msgpack, which would recurse on them without bound.
func (s *defaultKeySerializer) encodeValue(v any) (out json.RawMessage) {
	defer func() {
		if recover() != nil {
			out = hashValue(v)
		}
	}()

	if data, err := marshalJSON(v); err == nil {
		return data
	}

	d := newDumper()
	d.value(reflect.ValueOf(v))
	if d.cyclic {
		return d.hash()
	}

	if data, err := (MsgpackCodec{}).Marshal(v); err == nil {
		return quoteJSON(binaryPrefix + base64.StdEncoding.EncodeToString(data))
	}

	return d.hash()
}

func hashValue(v any) json.RawMessage {
	d := newDumper()
	d.value(reflect.ValueOf(v))
	return d.hash()
}

// marshalJSON encodes without HTML escaping so identities such as
// "<anonymous>" stay readable in keys.
func marshalJSON(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func quoteJSON(s string) json.RawMessage {
	data, _ := marshalJSON(s)
	return data
}

// visit identifies a pointer, map or slice on the current dump path.
type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// dumper writes a deterministic textual form of a value. Map entries are
// sorted, unexported struct fields skipped, and funcs and channels are
// rendered by address, which is stable for the lifetime of the process.
// A reference already on the path is written as "cycle".
type dumper struct {
	b      strings.Builder
	active map[visit]bool
	cyclic bool
}

func newDumper() *dumper {
	return &dumper{active: make(map[visit]bool)}
}

func (d *dumper) hash() json.RawMessage {
	return quoteJSON(fmt.Sprintf("%s%016x", hashPrefix, xxhash.Sum64String(d.b.String())))
}

// enter marks rv as being dumped. It reports false when rv is already on
// the path.
func (d *dumper) enter(rv reflect.Value) (visit, bool) {
	v := visit{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		v.len = rv.Len()
	}
	if d.active[v] {
		d.cyclic = true
		d.b.WriteString("cycle")
		return v, false
	}
	d.active[v] = true
	return v, true
}

func (d *dumper) value(rv reflect.Value) {
	b := &d.b
	if !rv.IsValid() {
		b.WriteString("nil")
		return
	}

	switch rv.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		if rv.IsNil() {
			fmt.Fprintf(b, "%s:nil", rv.Kind())
			return
		}
		fmt.Fprintf(b, "%s:%s:%#x", rv.Kind(), rv.Type(), rv.Pointer())
	case reflect.Interface:
		if rv.IsNil() {
			b.WriteString("nil")
			return
		}
		d.value(rv.Elem())
	case reflect.Ptr:
		if rv.IsNil() {
			b.WriteString("nil")
			return
		}
		v, ok := d.enter(rv)
		if !ok {
			return
		}
		defer delete(d.active, v)
		d.value(rv.Elem())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				b.WriteString("slice:nil")
				return
			}
			v, ok := d.enter(rv)
			if !ok {
				return
			}
			defer delete(d.active, v)
		}
		fmt.Fprintf(b, "%s[%d]{", rv.Kind(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			d.value(rv.Index(i))
		}
		b.WriteByte('}')
	case reflect.Map:
		if rv.IsNil() {
			b.WriteString("map:nil")
			return
		}
		v, ok := d.enter(rv)
		if !ok {
			return
		}
		defer delete(d.active, v)

		entries := make([]string, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entry := &dumper{active: d.active}
			entry.value(iter.Key())
			entry.b.WriteByte('=')
			entry.value(iter.Value())
			d.cyclic = d.cyclic || entry.cyclic
			entries = append(entries, entry.b.String())
		}
		sort.Strings(entries)
		fmt.Fprintf(b, "map[%d]{%s}", len(entries), strings.Join(entries, ","))
	case reflect.Struct:
		rt := rv.Type()
		fmt.Fprintf(b, "%s{", rt)
		first := true
		for i := 0; i < rv.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			b.WriteString(field.Name)
			b.WriteByte(':')
			d.value(rv.Field(i))
		}
		b.WriteByte('}')
	default:
		fmt.Fprintf(b, "%s:%v", rv.Type(), rv)
	}
}
