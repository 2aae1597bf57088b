// Package classfile decodes the class-level structure of JVM class files:
// names, supertypes, member descriptors and class annotations. Method
// bodies and all other attributes are skipped by length.
package classfile

import (
	"io"
	"os"

	"unusedclass/internal/core/errors"
)

// Magic is the first four bytes of every class file.
const Magic uint32 = 0xCAFEBABE

const (
	attrRuntimeVisibleAnnotations   = "RuntimeVisibleAnnotations"
	attrRuntimeInvisibleAnnotations = "RuntimeInvisibleAnnotations"
)

// ClassFile is the decoded subset of a class file the analyzer needs.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	AccessFlags  uint16

	ThisClass string
	// SuperClass is empty only for java/lang/Object (super_class index 0).
	SuperClass  string
	Interfaces  []string
	Fields      []Member
	Methods     []Member
	Annotations []Annotation
}

// Member is a field or method entry.
type Member struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
}

// Annotation is a class-level annotation; only its type is kept.
type Annotation struct {
	Descriptor string
	Visible    bool
}

// AccInterface is the access flag set on interfaces and annotation types.
const AccInterface uint16 = 0x0200

// HasSuperClass reports whether super_class names a class.
func (c *ClassFile) HasSuperClass() bool {
	return c.SuperClass != ""
}

// IsInterface reports whether ACC_INTERFACE is set.
func (c *ClassFile) IsInterface() bool {
	return c.AccessFlags&AccInterface != 0
}

// FieldDescriptors returns the field descriptors in declaration order.
func (c *ClassFile) FieldDescriptors() []string {
	return memberDescriptors(c.Fields)
}

// MethodDescriptors returns the method descriptors in declaration order.
func (c *ClassFile) MethodDescriptors() []string {
	return memberDescriptors(c.Methods)
}

// AnnotationDescriptors returns the class annotation type descriptors,
// visible ones and invisible ones alike.
func (c *ClassFile) AnnotationDescriptors() []string {
	out := make([]string, 0, len(c.Annotations))
	for _, a := range c.Annotations {
		out = append(out, a.Descriptor)
	}
	return out
}

func memberDescriptors(members []Member) []string {
	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, m.Descriptor)
	}
	return out
}

// DecodeFile opens path, decodes it and closes it on every exit path.
func DecodeFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeIOFailure, "open class file"), errors.CtxPath, path)
	}
	defer f.Close()

	cf, err := Decode(f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return cf, nil
}

// Decode reads r to EOF once and parses it as a class file.
func Decode(r io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeIOFailure, "read class file")
	}
	return Parse(data)
}

// Parse decodes an in-memory class file.
func Parse(data []byte) (*ClassFile, error) {
	r := &byteReader{buf: data}

	magic, err := r.u4()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, malformedAt(0, "bad magic 0x%08X", magic)
	}

	cf := &ClassFile{}
	if cf.MinorVersion, err = r.u2(); err != nil {
		return nil, err
	}
	if cf.MajorVersion, err = r.u2(); err != nil {
		return nil, err
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	if cf.AccessFlags, err = r.u2(); err != nil {
		return nil, err
	}
	if err := readHeaderNames(r, cp, cf); err != nil {
		return nil, err
	}
	if cf.Fields, err = readMembers(r, cp); err != nil {
		return nil, err
	}
	if cf.Methods, err = readMembers(r, cp); err != nil {
		return nil, err
	}
	if cf.Annotations, err = readClassAttributes(r, cp); err != nil {
		return nil, err
	}
	return cf, nil
}

func readHeaderNames(r *byteReader, cp *constantPool, cf *ClassFile) error {
	thisIndex, err := r.u2()
	if err != nil {
		return err
	}
	if cf.ThisClass, err = cp.classNameAt(thisIndex); err != nil {
		return errors.AddContext(err, errors.CtxOperation, "this_class")
	}

	superIndex, err := r.u2()
	if err != nil {
		return err
	}
	if superIndex != 0 {
		if cf.SuperClass, err = cp.classNameAt(superIndex); err != nil {
			return errors.AddContext(err, errors.CtxOperation, "super_class")
		}
	}

	count, err := r.u2()
	if err != nil {
		return err
	}
	cf.Interfaces = make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		idx, err := r.u2()
		if err != nil {
			return err
		}
		name, err := cp.classNameAt(idx)
		if err != nil {
			return errors.AddContext(err, errors.CtxOperation, "interfaces")
		}
		cf.Interfaces = append(cf.Interfaces, name)
	}
	return nil
}

func readMembers(r *byteReader, cp *constantPool) ([]Member, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	members := make([]Member, 0, count)
	for i := 0; i < int(count); i++ {
		var m Member
		if m.AccessFlags, err = r.u2(); err != nil {
			return nil, err
		}
		nameIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		if m.Name, err = cp.utf8At(nameIndex); err != nil {
			return nil, err
		}
		if m.Descriptor, err = cp.utf8At(descIndex); err != nil {
			return nil, err
		}
		if err := skipAttributes(r); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// skipAttributes advances past a member's attribute table, Code included.
func skipAttributes(r *byteReader) error {
	count, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := r.u2(); err != nil {
			return err
		}
		length, err := r.u4()
		if err != nil {
			return err
		}
		if err := r.skip(int(length)); err != nil {
			return err
		}
	}
	return nil
}

func readClassAttributes(r *byteReader, cp *constantPool) ([]Annotation, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	var annotations []Annotation
	for i := 0; i < int(count); i++ {
		nameIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		length, err := r.u4()
		if err != nil {
			return nil, err
		}
		name, err := cp.utf8At(nameIndex)
		if err != nil {
			return nil, err
		}

		switch name {
		case attrRuntimeVisibleAnnotations, attrRuntimeInvisibleAnnotations:
			body, err := r.sub(int(length))
			if err != nil {
				return nil, err
			}
			found, err := readAnnotationsAttribute(body, cp, name == attrRuntimeVisibleAnnotations)
			if err != nil {
				return nil, errors.AddContext(err, errors.CtxOperation, name)
			}
			annotations = append(annotations, found...)
		default:
			if err := r.skip(int(length)); err != nil {
				return nil, err
			}
		}
	}
	return annotations, nil
}
