package classfile

// maxElementDepth bounds nested annotation and array element values.
const maxElementDepth = 64

func readAnnotationsAttribute(r *byteReader, cp *constantPool, visible bool) ([]Annotation, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]Annotation, 0, count)
	for i := 0; i < int(count); i++ {
		typeIndex, err := r.u2()
		if err != nil {
			return nil, err
		}
		desc, err := cp.utf8At(typeIndex)
		if err != nil {
			return nil, err
		}
		if len(desc) < 3 || desc[0] != 'L' || desc[len(desc)-1] != ';' {
			return nil, malformedAt(r.off-2, "annotation type %q is not a class descriptor", desc)
		}
		if err := skipElementValuePairs(r, 0); err != nil {
			return nil, err
		}
		out = append(out, Annotation{Descriptor: desc, Visible: visible})
	}
	if r.remaining() != 0 {
		return nil, malformedAt(r.off, "annotations attribute has %d trailing bytes", r.remaining())
	}
	return out, nil
}

func skipElementValuePairs(r *byteReader, depth int) error {
	pairs, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(pairs); i++ {
		if _, err := r.u2(); err != nil { // element_name_index
			return err
		}
		if err := skipElementValue(r, depth); err != nil {
			return err
		}
	}
	return nil
}

func skipElementValue(r *byteReader, depth int) error {
	if depth > maxElementDepth {
		return malformedAt(r.off, "element values nested deeper than %d", maxElementDepth)
	}
	tag, err := r.u1()
	if err != nil {
		return err
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		return r.skip(2)
	case 'e':
		return r.skip(4)
	case '@':
		if _, err := r.u2(); err != nil { // type_index
			return err
		}
		return skipElementValuePairs(r, depth+1)
	case '[':
		n, err := r.u2()
		if err != nil {
			return err
		}
		for i := 0; i < int(n); i++ {
			if err := skipElementValue(r, depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return malformedAt(r.off-1, "unknown element value tag %q", tag)
	}
}
