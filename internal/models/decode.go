package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/spotkit/internal/shared"
)

// MaxLinkedFromDepth bounds how many nested "linked_from" objects are followed.
// A track reached through linked_from never resolves its own linked_from.
const MaxLinkedFromDepth = 1

// DecodeError reports a JSON document that does not match the expected shape.
//
// Path is a JSONPath-like location ("$.items[3].album.id").
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{shared.ErrDecode}
	}
	return []error{shared.ErrDecode, e.Err}
}

// Decodable is implemented by every entity that can be built from a JSON [Value].
type Decodable interface {
	DecodeJSON(v Value) error
}

// DecodeFunc builds a T from a JSON value. Page and list decoders are parameterized by one.
type DecodeFunc[T any] func(v Value) (T, error)

// Value is a parsed JSON node together with its location in the document.
type Value struct {
	raw   any
	path  string
	depth int  // linked_from nesting level
	local bool // inside a local-file track
}

// Parse parses a JSON document into a root [Value]. Numbers keep their textual form so that
// integers and floats can be told apart.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, &DecodeError{Path: "$", Reason: "invalid JSON", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, &DecodeError{Path: "$", Reason: "trailing data after JSON document"}
	}
	return Value{raw: raw, path: "$"}, nil
}

// Path returns the location of v in its document.
func (v Value) Path() string { return v.path }

// IsNull reports whether v is JSON null or was never present.
func (v Value) IsNull() bool { return v.raw == nil }

// Kind names the JSON type of v.
func (v Value) Kind() string { return kindOf(v.raw) }

// Fields returns an object reader for v. A non-object value yields a reader whose Err is already set.
func (v Value) Fields() *Fields {
	obj, ok := v.raw.(map[string]any)
	f := &Fields{obj: obj, path: v.path, depth: v.depth, local: v.local}
	if !ok {
		f.err = mismatch(v.path, "object", v.raw)
	}
	return f
}

// Elements returns the members of an array value.
func (v Value) Elements() ([]Value, error) {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil, mismatch(v.path, "array", v.raw)
	}
	out := make([]Value, len(arr))
	for i, raw := range arr {
		out[i] = Value{raw: raw, path: fmt.Sprintf("%s[%d]", v.path, i), depth: v.depth, local: v.local}
	}
	return out, nil
}

// Str returns v as a string.
func (v Value) Str() (string, error) {
	s, ok := v.raw.(string)
	if !ok {
		return "", mismatch(v.path, "string", v.raw)
	}
	return s, nil
}

// Int returns v as an integer. Fractional numbers, and numbers that do not fit an int, are a type mismatch.
func (v Value) Int() (int, error) {
	i, err := v.Int64()
	if err != nil {
		return 0, err
	}
	if int64(int(i)) != i {
		return 0, &DecodeError{Path: v.path, Reason: fmt.Sprintf("integer %d out of range", i)}
	}
	return int(i), nil
}

// Int64 returns v as a 64-bit integer, for values such as epoch milliseconds.
func (v Value) Int64() (int64, error) {
	n, ok := v.raw.(json.Number)
	if !ok {
		return 0, mismatch(v.path, "integer", v.raw)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, &DecodeError{Path: v.path, Reason: fmt.Sprintf("expected integer, got %s", n)}
	}
	return i, nil
}

// Float returns v as a float64.
func (v Value) Float() (float64, error) {
	n, ok := v.raw.(json.Number)
	if !ok {
		return 0, mismatch(v.path, "number", v.raw)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, &DecodeError{Path: v.path, Reason: "number out of range", Err: err}
	}
	return f, nil
}

// Bool returns v as a boolean.
func (v Value) Bool() (bool, error) {
	b, ok := v.raw.(bool)
	if !ok {
		return false, mismatch(v.path, "boolean", v.raw)
	}
	return b, nil
}

// linked returns v one linked_from level deeper.
func (v Value) linked() Value {
	v.depth++
	return v
}

// Fields reads members of a JSON object. The first failure is kept and every later
// read becomes a no-op returning the zero value, so decoders can read all fields and check [Fields.Err] once.
type Fields struct {
	obj   map[string]any
	path  string
	depth int
	local bool
	err   error
}

// Err returns the first failure encountered.
func (f *Fields) Err() error { return f.err }

// Depth is the linked_from nesting level of the object being read.
func (f *Fields) Depth() int { return f.depth }

// Local reports whether the object belongs to a local-file track, where Spotify sends
// catalogue identifiers (id, href, uri, release dates) as null.
func (f *Fields) Local() bool { return f.local }

// MarkLocal switches this object and everything read from it afterwards to local-file rules.
func (f *Fields) MarkLocal() { f.local = true }

// Has reports whether key is present with a non-null value.
func (f *Fields) Has(key string) bool {
	if f.err != nil {
		return false
	}
	raw, ok := f.obj[key]
	return ok && raw != nil
}

// Value returns the member at key. Absent members are returned as null values.
func (f *Fields) Value(key string) Value {
	return Value{raw: f.obj[key], path: f.path + "." + key, depth: f.depth, local: f.local}
}

// Fail records a failure for key unless one is already recorded.
func (f *Fields) Fail(key, reason string) {
	if f.err == nil {
		f.err = &DecodeError{Path: f.path + "." + key, Reason: reason}
	}
}

func (f *Fields) record(err error) {
	if f.err == nil && err != nil {
		f.err = err
	}
}

// require returns the member at key, failing when it is absent or null.
func (f *Fields) require(key string) (Value, bool) {
	if f.err != nil {
		return Value{}, false
	}
	raw, ok := f.obj[key]
	switch {
	case !ok:
		f.Fail(key, "missing required field")
		return Value{}, false
	case raw == nil:
		f.Fail(key, "required field is null")
		return Value{}, false
	}
	return f.Value(key), true
}

// optional returns the member at key when it is present and non-null.
func (f *Fields) optional(key string) (Value, bool) {
	if !f.Has(key) {
		return Value{}, false
	}
	return f.Value(key), true
}

func (f *Fields) String(key string) string {
	return Required(f, key, Value.Str)
}

// OptString returns "" when key is absent or null.
func (f *Fields) OptString(key string) string {
	return Optional(f, key, Value.Str)
}

// CatalogString is [Fields.String] for catalogue identifiers, which are optional under [Fields.Local].
func (f *Fields) CatalogString(key string) string {
	if f.local {
		return f.OptString(key)
	}
	return f.String(key)
}

func (f *Fields) Int(key string) int {
	return Required(f, key, Value.Int)
}

func (f *Fields) Int64(key string) int64 {
	return Required(f, key, Value.Int64)
}

// OptInt returns def when key is absent or null.
func (f *Fields) OptInt(key string, def int) int {
	if _, ok := f.optional(key); !ok {
		return def
	}
	return Optional(f, key, Value.Int)
}

func (f *Fields) Float(key string) float64 {
	return Required(f, key, Value.Float)
}

func (f *Fields) OptFloat(key string) float64 {
	return Optional(f, key, Value.Float)
}

func (f *Fields) Bool(key string) bool {
	return Required(f, key, Value.Bool)
}

func (f *Fields) OptBool(key string) bool {
	return Optional(f, key, Value.Bool)
}

// NullBool keeps the difference between false and absent/null.
func (f *Fields) NullBool(key string) *bool {
	v, ok := f.optional(key)
	if !ok {
		return nil
	}
	b, err := v.Bool()
	if err != nil {
		f.record(err)
		return nil
	}
	return &b
}

func (f *Fields) Strings(key string) []string {
	return RequiredList(f, key, Value.Str)
}

func (f *Fields) OptStrings(key string) []string {
	return OptionalList(f, key, Value.Str)
}

// StringMap reads an optional object whose members are all strings, such as external_urls.
func (f *Fields) StringMap(key string) map[string]string {
	v, ok := f.optional(key)
	if !ok {
		return nil
	}
	obj, isObj := v.raw.(map[string]any)
	if !isObj {
		f.record(mismatch(v.path, "object", v.raw))
		return nil
	}
	out := make(map[string]string, len(obj))
	for k := range obj {
		s, err := (Value{raw: obj[k], path: v.path + "." + k}).Str()
		if err != nil {
			f.record(err)
			return nil
		}
		out[k] = s
	}
	return out
}

// Required decodes the member at key with decode, failing when it is absent or null.
func Required[T any](f *Fields, key string, decode DecodeFunc[T]) T {
	var zero T
	v, ok := f.require(key)
	if !ok {
		return zero
	}
	out, err := decode(v)
	if err != nil {
		f.record(asDecodeError(v.path, err))
		return zero
	}
	return out
}

// Optional decodes the member at key, returning the zero value when it is absent or null.
func Optional[T any](f *Fields, key string, decode DecodeFunc[T]) T {
	var zero T
	v, ok := f.optional(key)
	if !ok {
		return zero
	}
	out, err := decode(v)
	if err != nil {
		f.record(asDecodeError(v.path, err))
		return zero
	}
	return out
}

// RequiredList decodes an array member whose elements are decoded with decode.
func RequiredList[T any](f *Fields, key string, decode DecodeFunc[T]) []T {
	v, ok := f.require(key)
	if !ok {
		return nil
	}
	out, err := DecodeList(v, decode)
	f.record(err)
	return out
}

// OptionalList is [RequiredList] for members that may be absent or null.
func OptionalList[T any](f *Fields, key string, decode DecodeFunc[T]) []T {
	v, ok := f.optional(key)
	if !ok {
		return nil
	}
	out, err := DecodeList(v, decode)
	f.record(err)
	return out
}

// DecodeList decodes every element of an array value in order and stops at the first failure.
func DecodeList[T any](v Value, decode DecodeFunc[T]) ([]T, error) {
	elems, err := v.Elements()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(elems))
	for i, elem := range elems {
		item, err := decode(elem)
		if err != nil {
			return nil, asDecodeError(elem.path, err)
		}
		out[i] = item
	}
	return out, nil
}

// Entity adapts a [Decodable] type into a [DecodeFunc]. JSON null decodes to a nil pointer.
func Entity[T any, PT interface {
	*T
	Decodable
}]() DecodeFunc[*T] {
	return nullable[T, PT]
}

func nullable[T any, PT interface {
	*T
	Decodable
}](v Value) (*T, error) {
	if v.IsNull() {
		return nil, nil
	}
	return DecodeValue[T, PT](v)
}

// DecodeValue builds a T from an already parsed value. Null is rejected.
func DecodeValue[T any, PT interface {
	*T
	Decodable
}](v Value) (*T, error) {
	out := PT(new(T))
	if err := out.DecodeJSON(v); err != nil {
		return nil, asDecodeError(v.path, err)
	}
	return (*T)(out), nil
}

// Decode parses data and builds a T from the root object.
//
//	track, err := models.Decode[models.Track](body)
func Decode[T any, PT interface {
	*T
	Decodable
}](data []byte) (*T, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return DecodeValue[T, PT](v)
}

// asDecodeError leaves decode errors untouched and wraps anything else at path.
func asDecodeError(path string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Path: path, Reason: "invalid value", Err: err}
}

func mismatch(path, want string, raw any) *DecodeError {
	return &DecodeError{Path: path, Reason: fmt.Sprintf("expected %s, got %s", want, kindOf(raw))}
}

func kindOf(raw any) string {
	switch raw.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return strings.ToLower(fmt.Sprintf("%T", raw))
	}
}
