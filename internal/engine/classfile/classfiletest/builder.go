// Package classfiletest assembles class file bytes for tests.
package classfiletest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
)

const (
	AccPublic    uint16 = 0x0001
	AccInterface uint16 = 0x0200
	AccAbstract  uint16 = 0x0400
)

// Builder produces a minimal but structurally complete class file. Constant
// pool entries are interned, so the same name is only stored once.
type Builder struct {
	major  uint16
	access uint16

	pool      []byte
	poolCount uint16
	utf8s     map[string]uint16
	classes   map[string]uint16

	thisName   string
	superName  string
	interfaces []string
	fields     []member
	methods    []member

	visible   []annotation
	invisible []annotation
	extra     []rawAttribute
}

type member struct {
	name, desc string
	withCode   bool
}

type annotation struct {
	desc  string
	elems []Element
}

type rawAttribute struct {
	name string
	data []byte
}

// Element is one element-value pair of an annotation.
type Element struct {
	Name  string
	Value Value
}

// Value is an annotation element value.
type Value interface {
	encode(b *Builder) []byte
}

// New starts a public class named name. An empty super produces a
// super_class index of zero.
func New(name, super string) *Builder {
	return &Builder{
		major:     52,
		access:    AccPublic,
		poolCount: 1,
		utf8s:     make(map[string]uint16),
		classes:   make(map[string]uint16),
		thisName:  name,
		superName: super,
	}
}

func (b *Builder) Access(flags uint16) *Builder {
	b.access = flags
	return b
}

func (b *Builder) Version(major uint16) *Builder {
	b.major = major
	return b
}

func (b *Builder) Interfaces(names ...string) *Builder {
	b.interfaces = append(b.interfaces, names...)
	return b
}

func (b *Builder) Field(name, desc string) *Builder {
	b.fields = append(b.fields, member{name: name, desc: desc})
	return b
}

// Method adds a method with a small Code attribute.
func (b *Builder) Method(name, desc string) *Builder {
	b.methods = append(b.methods, member{name: name, desc: desc, withCode: true})
	return b
}

func (b *Builder) Annotation(desc string, visible bool, elems ...Element) *Builder {
	a := annotation{desc: desc, elems: elems}
	if visible {
		b.visible = append(b.visible, a)
	} else {
		b.invisible = append(b.invisible, a)
	}
	return b
}

// Attribute adds an opaque class attribute, such as SourceFile or
// InnerClasses, which the decoder must skip.
func (b *Builder) Attribute(name string, data []byte) *Builder {
	b.extra = append(b.extra, rawAttribute{name: name, data: data})
	return b
}

// StringConstant adds a CONSTANT_String entry, the way an ldc of a string
// literal would.
func (b *Builder) StringConstant(s string) *Builder {
	idx := b.utf8(s)
	b.addEntry(8, u2(idx))
	return b
}

// LongConstant adds an 8-byte CONSTANT_Long entry that occupies two slots.
func (b *Builder) LongConstant(v int64) *Builder {
	b.addLong(v)
	return b
}

// DoubleConstant adds an 8-byte CONSTANT_Double entry.
func (b *Builder) DoubleConstant(v float64) *Builder {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	b.addEntry(6, buf[:])
	b.poolCount++
	return b
}

// Bytes serializes the class file.
func (b *Builder) Bytes() []byte {
	// Body first so every constant it needs is interned before the pool is
	// written out.
	var body []byte
	body = binary.BigEndian.AppendUint16(body, b.access)
	body = binary.BigEndian.AppendUint16(body, b.class(b.thisName))
	if b.superName == "" {
		body = binary.BigEndian.AppendUint16(body, 0)
	} else {
		body = binary.BigEndian.AppendUint16(body, b.class(b.superName))
	}
	body = binary.BigEndian.AppendUint16(body, uint16(len(b.interfaces)))
	for _, name := range b.interfaces {
		body = binary.BigEndian.AppendUint16(body, b.class(name))
	}
	body = append(body, b.members(b.fields)...)
	body = append(body, b.members(b.methods)...)

	attrs := make([][]byte, 0, 2+len(b.extra))
	if len(b.visible) > 0 {
		attrs = append(attrs, b.attribute("RuntimeVisibleAnnotations", b.annotations(b.visible)))
	}
	for _, raw := range b.extra {
		attrs = append(attrs, b.attribute(raw.name, raw.data))
	}
	if len(b.invisible) > 0 {
		attrs = append(attrs, b.attribute("RuntimeInvisibleAnnotations", b.annotations(b.invisible)))
	}
	body = binary.BigEndian.AppendUint16(body, uint16(len(attrs)))
	for _, a := range attrs {
		body = append(body, a...)
	}

	var out []byte
	out = binary.BigEndian.AppendUint32(out, 0xCAFEBABE)
	out = binary.BigEndian.AppendUint16(out, 0)
	out = binary.BigEndian.AppendUint16(out, b.major)
	out = binary.BigEndian.AppendUint16(out, b.poolCount)
	out = append(out, b.pool...)
	return append(out, body...)
}

// WriteFile writes the class under dir using its internal name as the
// relative path, creating directories, and returns the file path.
func (b *Builder) WriteFile(dir string) (string, error) {
	path := filepath.Join(dir, filepath.FromSlash(b.thisName)+".class")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (b *Builder) members(list []member) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, uint16(len(list)))
	for _, m := range list {
		out = binary.BigEndian.AppendUint16(out, AccPublic)
		out = binary.BigEndian.AppendUint16(out, b.utf8(m.name))
		out = binary.BigEndian.AppendUint16(out, b.utf8(m.desc))
		if !m.withCode {
			out = binary.BigEndian.AppendUint16(out, 0)
			continue
		}
		out = binary.BigEndian.AppendUint16(out, 1)
		out = append(out, b.attribute("Code", codeAttribute())...)
	}
	return out
}

// codeAttribute is "aconst_null; areturn" with an empty exception table.
func codeAttribute() []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, 1) // max_stack
	out = binary.BigEndian.AppendUint16(out, 4) // max_locals
	out = binary.BigEndian.AppendUint32(out, 2)
	out = append(out, 0x01, 0xB0)
	out = binary.BigEndian.AppendUint16(out, 0)
	return binary.BigEndian.AppendUint16(out, 0)
}

func (b *Builder) attribute(name string, data []byte) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, b.utf8(name))
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	return append(out, data...)
}

func (b *Builder) annotations(list []annotation) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, uint16(len(list)))
	for _, a := range list {
		out = append(out, b.annotationBody(a.desc, a.elems)...)
	}
	return out
}

func (b *Builder) annotationBody(desc string, elems []Element) []byte {
	var out []byte
	out = binary.BigEndian.AppendUint16(out, b.utf8(desc))
	out = binary.BigEndian.AppendUint16(out, uint16(len(elems)))
	for _, e := range elems {
		out = binary.BigEndian.AppendUint16(out, b.utf8(e.Name))
		out = append(out, e.Value.encode(b)...)
	}
	return out
}

func (b *Builder) addEntry(tag byte, payload []byte) uint16 {
	idx := b.poolCount
	b.pool = append(b.pool, tag)
	b.pool = append(b.pool, payload...)
	b.poolCount++
	return idx
}

func (b *Builder) utf8(s string) uint16 {
	if idx, ok := b.utf8s[s]; ok {
		return idx
	}
	payload := binary.BigEndian.AppendUint16(nil, uint16(len(s)))
	payload = append(payload, s...)
	idx := b.addEntry(1, payload)
	b.utf8s[s] = idx
	return idx
}

func (b *Builder) class(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	idx := b.addEntry(7, u2(b.utf8(name)))
	b.classes[name] = idx
	return idx
}

func (b *Builder) addInteger(v int32) uint16 {
	return b.addEntry(3, binary.BigEndian.AppendUint32(nil, uint32(v)))
}

func (b *Builder) addLong(v int64) uint16 {
	idx := b.addEntry(5, binary.BigEndian.AppendUint64(nil, uint64(v)))
	b.poolCount++
	return idx
}

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

type intValue int32

// Int is an 'I' element value.
func Int(v int32) Value { return intValue(v) }

func (v intValue) encode(b *Builder) []byte {
	return append([]byte{'I'}, u2(b.addInteger(int32(v)))...)
}

type longValue int64

// Long is a 'J' element value backed by a two-slot constant.
func Long(v int64) Value { return longValue(v) }

func (v longValue) encode(b *Builder) []byte {
	return append([]byte{'J'}, u2(b.addLong(int64(v)))...)
}

type stringValue string

// String is an 's' element value.
func String(s string) Value { return stringValue(s) }

func (v stringValue) encode(b *Builder) []byte {
	return append([]byte{'s'}, u2(b.utf8(string(v)))...)
}

type enumValue struct{ typeDesc, name string }

// Enum is an 'e' element value.
func Enum(typeDesc, name string) Value { return enumValue{typeDesc: typeDesc, name: name} }

func (v enumValue) encode(b *Builder) []byte {
	out := []byte{'e'}
	out = append(out, u2(b.utf8(v.typeDesc))...)
	return append(out, u2(b.utf8(v.name))...)
}

type classValue string

// Class is a 'c' element value holding a return descriptor such as
// "Lcom/x/Type;".
func Class(desc string) Value { return classValue(desc) }

func (v classValue) encode(b *Builder) []byte {
	return append([]byte{'c'}, u2(b.utf8(string(v)))...)
}

type arrayValue []Value

// Array is a '[' element value.
func Array(values ...Value) Value { return arrayValue(values) }

func (v arrayValue) encode(b *Builder) []byte {
	out := append([]byte{'['}, u2(uint16(len(v)))...)
	for _, item := range v {
		out = append(out, item.encode(b)...)
	}
	return out
}

type nestedValue struct {
	desc  string
	elems []Element
}

// Nested is an '@' element value holding another annotation.
func Nested(desc string, elems ...Element) Value { return nestedValue{desc: desc, elems: elems} }

func (v nestedValue) encode(b *Builder) []byte {
	return append([]byte{'@'}, b.annotationBody(v.desc, v.elems)...)
}
