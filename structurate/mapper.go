// SPDX-License-Identifier: MIT

package structurate

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

var (
	durationType        = reflect.TypeFor[time.Duration]()
	nodeType            = reflect.TypeFor[*Node]()
	textMarshalerType   = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// Mapper converts between Go structs and Nodes using struct tags:
//
//	Port    int    `config:"port"`                      // explicit key
//	Secret  string `config:"-"`                         // ignored
//	Color   RGB    `config:"color,converter=hexcolor"`  // named converter
//	Timeout time.Duration                               // key "timeout"
//
// Without a config tag the yaml tag name is used, then the lower-camel field name.
// A Mapper is safe for concurrent use.
type Mapper struct {
	fields sync.Map // reflect.Type -> []fieldInfo

	mu         sync.RWMutex
	adapters   map[reflect.Type]adapter
	converters map[string]adapter
}

type fieldInfo struct {
	key       string
	index     []int
	typ       reflect.Type
	converter string
}

// NewMapper returns a Mapper with no adapters registered.
func NewMapper() *Mapper {
	return &Mapper{
		adapters:   make(map[reflect.Type]adapter),
		converters: make(map[string]adapter),
	}
}

// Keys returns the config keys of struct type t in declaration order.
func (m *Mapper) Keys(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	fields := m.fieldsFor(t)
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.key
	}
	return out
}

func (m *Mapper) fieldsFor(t reflect.Type) []fieldInfo {
	if cached, ok := m.fields.Load(t); ok {
		return cached.([]fieldInfo)
	}
	var out []fieldInfo
	seen := make(map[string]struct{})
	collectFields(t, nil, seen, &out)
	actual, _ := m.fields.LoadOrStore(t, out)
	return actual.([]fieldInfo)
}

// collectFields walks t's own fields first, then its embedded structs, so
// outer declarations win on key collisions.
func collectFields(t reflect.Type, parent []int, seen map[string]struct{}, out *[]fieldInfo) {
	var embedded []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, opts, tagged := fieldTag(sf)
		if name == "-" && len(opts) == 0 {
			continue
		}
		if sf.Anonymous && !tagged && sf.Type.Kind() == reflect.Struct {
			embedded = append(embedded, sf)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		key := name
		if key == "" {
			key = lowerCamel(sf.Name)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = i
		*out = append(*out, fieldInfo{
			key:       key,
			index:     index,
			typ:       sf.Type,
			converter: opts["converter"],
		})
	}
	for _, sf := range embedded {
		index := make([]int, len(parent)+1)
		copy(index, parent)
		index[len(parent)] = sf.Index[0]
		collectFields(sf.Type, index, seen, out)
	}
}

// fieldTag reads the config tag, falling back to the yaml tag name.
func fieldTag(sf reflect.StructField) (string, map[string]string, bool) {
	if tag, ok := sf.Tag.Lookup("config"); ok {
		parts := strings.Split(tag, ",")
		opts := make(map[string]string)
		for _, p := range parts[1:] {
			k, v, _ := strings.Cut(strings.TrimSpace(p), "=")
			if k != "" {
				opts[k] = v
			}
		}
		return strings.TrimSpace(parts[0]), opts, true
	}
	if tag, ok := sf.Tag.Lookup("yaml"); ok {
		name, _, _ := strings.Cut(tag, ",")
		return name, nil, name != ""
	}
	return "", nil, false
}

// lowerCamel maps Go field names to config keys: ServerPort -> serverPort,
// URL -> url, HTTPPort -> httpPort, HTTP2Port -> http2Port.
func lowerCamel(s string) string {
	r := []rune(s)
	n := 0
	for n < len(r) && unicode.IsUpper(r[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n == len(r):
		return strings.ToLower(s)
	case n > 1 && unicode.IsLower(r[n]):
		n--
	}
	for i := 0; i < n; i++ {
		r[i] = unicode.ToLower(r[i])
	}
	return string(r)
}

// Decode fills dst, a non-nil pointer to a struct, from node. Fields whose key
// is missing or nil keep their current value. Every conversion failure is
// reported in the returned FieldErrors; the remaining fields are still set.
func (m *Mapper) Decode(node *Node, dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: decode target must be a non-nil struct pointer, got %T", ErrUnsupportedType, dst)
	}
	if node == nil {
		return nil
	}
	var errs FieldErrors
	m.decodeStruct(node, rv.Elem(), "", &errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m *Mapper) decodeStruct(node *Node, v reflect.Value, prefix string, errs *FieldErrors) {
	for _, f := range m.fieldsFor(v.Type()) {
		raw := node.Get(f.key)
		if raw == nil {
			continue
		}
		path := joinPath(prefix, f.key)
		fv := v.FieldByIndex(f.index)
		if f.converter == "" {
			m.decodeValue(raw, fv, path, errs)
			continue
		}
		conv, err := m.converterFor(f.converter, f.typ)
		if err == nil {
			var out reflect.Value
			if out, err = conv.from(raw); err == nil {
				fv.Set(out)
				continue
			}
		}
		*errs = append(*errs, &FieldError{Path: path, Err: err})
	}
}

// decodeValue converts raw into out. Failures are appended to errs and
// reported as false; out is left untouched in that case.
func (m *Mapper) decodeValue(raw any, out reflect.Value, path string, errs *FieldErrors) bool {
	if raw == nil {
		return true
	}
	fail := func(err error) bool {
		*errs = append(*errs, &FieldError{Path: path, Err: err})
		return false
	}
	t := out.Type()

	if a, ok := m.adapterFor(t); ok {
		v, err := a.from(raw)
		if err != nil {
			return fail(err)
		}
		out.Set(v)
		return true
	}

	switch t.Kind() {
	case reflect.Interface:
		if t.NumMethod() == 0 {
			out.Set(reflect.ValueOf(plainValue(raw)))
			return true
		}
		if reflect.TypeOf(raw).Implements(t) {
			out.Set(reflect.ValueOf(raw))
			return true
		}
		return fail(fmt.Errorf("%T does not implement %s", raw, t))
	case reflect.Pointer:
		if t == nodeType {
			n, ok := raw.(*Node)
			if !ok {
				return fail(fmt.Errorf("expected mapping, got %s", describe(raw)))
			}
			out.Set(reflect.ValueOf(n.Clone()))
			return true
		}
		elem := reflect.New(t.Elem())
		if !out.IsNil() {
			elem.Elem().Set(out.Elem())
		}
		if !m.decodeValue(raw, elem.Elem(), path, errs) {
			return false
		}
		out.Set(elem)
		return true
	}

	if rv := reflect.ValueOf(raw); rv.IsValid() && rv.Type() == t {
		out.Set(rv)
		return true
	}

	if t == durationType {
		s, ok := raw.(string)
		if !ok {
			return fail(fmt.Errorf("duration must be a string like \"1m30s\", got %s", describe(raw)))
		}
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return fail(err)
		}
		out.SetInt(int64(d))
		return true
	}

	if s, ok := raw.(string); ok && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		u := out.Addr().Interface().(encoding.TextUnmarshaler)
		if err := u.UnmarshalText([]byte(s)); err != nil {
			return fail(err)
		}
		return true
	}

	switch t.Kind() {
	case reflect.String:
		s, err := scalarString(raw)
		if err != nil {
			return fail(err)
		}
		out.SetString(s)
	case reflect.Bool:
		b, err := toBool(raw)
		if err != nil {
			return fail(err)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := toInt64(raw)
		if err != nil {
			return fail(err)
		}
		if out.OverflowInt(i) {
			return fail(fmt.Errorf("value %d overflows %s", i, t))
		}
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := toUint64(raw)
		if err != nil {
			return fail(err)
		}
		if out.OverflowUint(u) {
			return fail(fmt.Errorf("value %d overflows %s", u, t))
		}
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(raw)
		if err != nil {
			return fail(err)
		}
		if out.OverflowFloat(f) {
			return fail(fmt.Errorf("value %g overflows %s", f, t))
		}
		out.SetFloat(f)
	case reflect.Slice:
		if s, ok := raw.(string); ok && t.Elem().Kind() == reflect.Uint8 {
			out.SetBytes([]byte(s))
			return true
		}
		items, ok := raw.([]any)
		if !ok {
			return fail(fmt.Errorf("expected sequence, got %s", describe(raw)))
		}
		slice := reflect.MakeSlice(t, len(items), len(items))
		if !m.decodeItems(items, slice, path, errs) {
			return false
		}
		out.Set(slice)
	case reflect.Array:
		items, ok := raw.([]any)
		if !ok {
			return fail(fmt.Errorf("expected sequence, got %s", describe(raw)))
		}
		if len(items) != t.Len() {
			return fail(fmt.Errorf("expected %d items, got %d", t.Len(), len(items)))
		}
		arr := reflect.New(t).Elem()
		if !m.decodeItems(items, arr, path, errs) {
			return false
		}
		out.Set(arr)
	case reflect.Map:
		n, ok := raw.(*Node)
		if !ok {
			return fail(fmt.Errorf("expected mapping, got %s", describe(raw)))
		}
		if t.Key().Kind() != reflect.String {
			return fail(fmt.Errorf("%w: map key type %s", ErrUnsupportedType, t.Key()))
		}
		mv := reflect.MakeMapWithSize(t, n.Len())
		ok = true
		for _, k := range n.keys {
			elem := reflect.New(t.Elem()).Elem()
			if m.decodeValue(n.values[k], elem, path+"."+k, errs) {
				mv.SetMapIndex(reflect.ValueOf(k).Convert(t.Key()), elem)
			} else {
				ok = false
			}
		}
		if !ok {
			return false
		}
		out.Set(mv)
	case reflect.Struct:
		n, ok := raw.(*Node)
		if !ok {
			return fail(fmt.Errorf("expected mapping, got %s", describe(raw)))
		}
		m.decodeStruct(n, out, path, errs)
	default:
		return fail(fmt.Errorf("%w: %s", ErrUnsupportedType, t))
	}
	return true
}

func (m *Mapper) decodeItems(items []any, dst reflect.Value, path string, errs *FieldErrors) bool {
	ok := true
	for i, item := range items {
		if item == nil {
			continue
		}
		if !m.decodeValue(item, dst.Index(i), fmt.Sprintf("%s[%d]", path, i), errs) {
			ok = false
		}
	}
	return ok
}

// Encode converts src, a struct or pointer to struct, into a Node. Nil
// pointers, slices, maps and interfaces are omitted. Failing fields are
// reported in FieldErrors and left out of the returned node.
func (m *Mapper) Encode(src any) (*Node, error) {
	rv := reflect.ValueOf(src)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: encode source must be a struct, got %T", ErrUnsupportedType, src)
	}
	var errs FieldErrors
	out := m.encodeStruct(rv, "", &errs)
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

func (m *Mapper) encodeStruct(v reflect.Value, prefix string, errs *FieldErrors) *Node {
	out := NewNode()
	for _, f := range m.fieldsFor(v.Type()) {
		fv := v.FieldByIndex(f.index)
		if isNilValue(fv) {
			continue
		}
		path := joinPath(prefix, f.key)
		var (
			val any
			err error
		)
		if f.converter != "" {
			var conv adapter
			if conv, err = m.converterFor(f.converter, f.typ); err == nil {
				val, err = conv.to(fv)
			}
		} else {
			val, err = m.encodeValue(fv, path, errs)
		}
		if err != nil {
			*errs = append(*errs, &FieldError{Path: path, Err: err})
			continue
		}
		out.Set(f.key, val)
	}
	return out
}

func (m *Mapper) encodeValue(v reflect.Value, path string, errs *FieldErrors) (any, error) {
	t := v.Type()
	if a, ok := m.adapterFor(t); ok {
		return a.to(v)
	}
	if t == nodeType {
		if v.IsNil() {
			return nil, nil
		}
		return v.Interface().(*Node).Clone(), nil
	}

	switch t.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		return m.encodeValue(v.Elem(), path, errs)
	}

	if t == durationType {
		return time.Duration(v.Int()).String(), nil
	}
	if t.Implements(textMarshalerType) {
		text, err := v.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}
	if v.CanAddr() && reflect.PointerTo(t).Implements(textMarshalerType) {
		text, err := v.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u <= math.MaxInt {
			return int(u), nil
		}
		return u, nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return string(v.Bytes()), nil
		}
		return m.encodeItems(v, path, errs)
	case reflect.Array:
		return m.encodeItems(v, path, errs)
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		if t.Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map key type %s", ErrUnsupportedType, t.Key())
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		out := NewNode()
		for _, k := range keys {
			val, err := m.encodeValue(v.MapIndex(reflect.ValueOf(k).Convert(t.Key())), path+"."+k, errs)
			if err != nil {
				return nil, err
			}
			out.Set(k, val)
		}
		return out, nil
	case reflect.Struct:
		return m.encodeStruct(v, path, errs), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

func (m *Mapper) encodeItems(v reflect.Value, path string, errs *FieldErrors) ([]any, error) {
	out := make([]any, v.Len())
	for i := range out {
		val, err := m.encodeValue(v.Index(i), fmt.Sprintf("%s[%d]", path, i), errs)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// unknownKeys lists key paths in node that no field of t maps to. Nested
// struct mappings are checked too; root reports skip the version key.
func (m *Mapper) unknownKeys(node *Node, t reflect.Type, prefix string) []string {
	fields := m.fieldsFor(t)
	byKey := make(map[string]fieldInfo, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}
	var out []string
	for _, k := range node.keys {
		if prefix == "" && k == VersionKey {
			continue
		}
		path := joinPath(prefix, k)
		f, ok := byKey[k]
		if !ok {
			out = append(out, path)
			continue
		}
		if f.converter != "" {
			continue
		}
		out = append(out, m.unknownInValue(node.values[k], f.typ, path)...)
	}
	return out
}

func (m *Mapper) unknownInValue(raw any, t reflect.Type, path string) []string {
	for t.Kind() == reflect.Pointer && t != nodeType {
		t = t.Elem()
	}
	if _, ok := m.adapterFor(t); ok {
		return nil
	}
	switch t.Kind() {
	case reflect.Struct:
		n, ok := raw.(*Node)
		if !ok || reflect.PointerTo(t).Implements(textUnmarshalerType) {
			return nil
		}
		return m.unknownKeys(n, t, path)
	case reflect.Slice, reflect.Array:
		items, ok := raw.([]any)
		if !ok {
			return nil
		}
		var out []string
		for i, item := range items {
			out = append(out, m.unknownInValue(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i))...)
		}
		return out
	case reflect.Map:
		n, ok := raw.(*Node)
		if !ok {
			return nil
		}
		var out []string
		for _, k := range n.keys {
			out = append(out, m.unknownInValue(n.values[k], t.Elem(), path+"."+k)...)
		}
		return out
	}
	return nil
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}

func describe(raw any) string {
	switch raw.(type) {
	case *Node:
		return "mapping"
	case []any:
		return "sequence"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T %v", raw, raw)
}

func scalarString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case *Node, []any:
		return "", fmt.Errorf("expected scalar, got %s", describe(raw))
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	}
	return fmt.Sprint(raw), nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("invalid boolean %q", v)
		}
		return b, nil
	}
	return false, fmt.Errorf("expected boolean, got %s", describe(raw))
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %g", v)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
		if v >= math.MaxInt64 || v < math.MinInt64 {
			return 0, fmt.Errorf("value %g overflows int64", v)
		}
		return int64(v), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q", v)
		}
		return i, nil
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(raw))
}

func toUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case uint64:
		return v, nil
	case string:
		u, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid unsigned integer %q", v)
		}
		return u, nil
	}
	i, err := toInt64(raw)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, fmt.Errorf("value %d is negative", i)
	}
	return uint64(i), nil
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(raw))
}
