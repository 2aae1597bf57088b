package classfile

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type constant struct {
	tag uint8
	// raw holds the undecoded bytes of a Utf8 entry.
	raw []byte
	// ref is the first u2 operand: name_index for Class, Module and Package.
	ref uint16
}

// constantPool is indexed the way the class file indexes it: slot 0 is
// unused and the slot after a Long or Double is left empty.
type constantPool struct {
	entries []constant
	utf8    map[uint16]string
}

func readConstantPool(r *byteReader) (*constantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, malformedAt(r.off-2, "constant pool count is zero")
	}

	cp := &constantPool{
		entries: make([]constant, count),
		utf8:    make(map[uint16]string),
	}
	for i := uint16(1); i < count; i++ {
		start := r.off
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		entry := constant{tag: tag}
		switch tag {
		case tagUtf8:
			n, err := r.u2()
			if err != nil {
				return nil, err
			}
			if entry.raw, err = r.bytes(int(n)); err != nil {
				return nil, err
			}
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			if entry.ref, err = r.u2(); err != nil {
				return nil, err
			}
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			if err := r.skip(4); err != nil {
				return nil, err
			}
		case tagMethodHandle:
			if err := r.skip(3); err != nil {
				return nil, err
			}
		case tagLong, tagDouble:
			if err := r.skip(8); err != nil {
				return nil, err
			}
			cp.entries[i] = entry
			i++
			if i >= count {
				return nil, malformedAt(start, "8-byte constant at index %d overruns pool of %d", i-1, count)
			}
			continue
		default:
			return nil, malformedAt(start, "unknown constant pool tag %d at index %d", tag, i)
		}
		cp.entries[i] = entry
	}
	return cp, nil
}

func (cp *constantPool) entry(index uint16, want uint8) (constant, error) {
	if index == 0 || int(index) >= len(cp.entries) {
		return constant{}, malformed("constant pool index %d out of range [1,%d)", index, len(cp.entries))
	}
	e := cp.entries[index]
	if e.tag != want {
		return constant{}, malformed("constant pool index %d has tag %d, expected %d", index, e.tag, want)
	}
	return e, nil
}

func (cp *constantPool) utf8At(index uint16) (string, error) {
	if s, ok := cp.utf8[index]; ok {
		return s, nil
	}
	e, err := cp.entry(index, tagUtf8)
	if err != nil {
		return "", err
	}
	s, err := decodeModifiedUTF8(e.raw)
	if err != nil {
		return "", malformed("constant pool index %d: invalid modified UTF-8: %v", index, err)
	}
	cp.utf8[index] = s
	return s, nil
}

func (cp *constantPool) classNameAt(index uint16) (string, error) {
	e, err := cp.entry(index, tagClass)
	if err != nil {
		return "", err
	}
	name, err := cp.utf8At(e.ref)
	if err != nil {
		return "", err
	}
	if name == "" {
		return "", malformed("constant pool index %d names an empty class", index)
	}
	return name, nil
}
