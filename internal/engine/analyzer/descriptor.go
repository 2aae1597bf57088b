package analyzer

import (
	"strings"

	"unusedclass/internal/core/errors"
)

// FieldClass returns the class named by a field descriptor. Array
// dimensions are stripped; primitive element types yield ok=false.
func FieldClass(desc string) (name string, ok bool, err error) {
	name, rest, ok, err := nextType(desc, false)
	if err != nil {
		return "", false, err
	}
	if rest != "" {
		return "", false, malformedDescriptor(desc, "trailing characters")
	}
	return name, ok, nil
}

// MethodClasses returns the classes named by the argument and return types
// of a method descriptor, in declaration order with the return type last.
func MethodClasses(desc string) ([]string, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, malformedDescriptor(desc, "missing '('")
	}
	rest := desc[1:]
	var names []string
	for {
		if rest == "" {
			return nil, malformedDescriptor(desc, "missing ')'")
		}
		if rest[0] == ')' {
			rest = rest[1:]
			break
		}
		name, next, ok, err := nextType(rest, false)
		if err != nil {
			return nil, malformedDescriptor(desc, "bad argument type")
		}
		if ok {
			names = append(names, name)
		}
		rest = next
	}

	name, next, ok, err := nextType(rest, true)
	if err != nil {
		return nil, malformedDescriptor(desc, "bad return type")
	}
	if next != "" {
		return nil, malformedDescriptor(desc, "trailing characters")
	}
	if ok {
		names = append(names, name)
	}
	return names, nil
}

// nextType consumes one type from the head of s.
func nextType(s string, allowVoid bool) (name, rest string, ok bool, err error) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return "", "", false, malformedDescriptor(s, "missing element type")
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return "", s[i+1:], false, nil
	case 'V':
		if !allowVoid || i > 0 {
			return "", "", false, malformedDescriptor(s, "void used as a value type")
		}
		return "", s[i+1:], false, nil
	case 'L':
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			return "", "", false, malformedDescriptor(s, "unterminated class type")
		}
		name = s[i+1 : i+end]
		if name == "" {
			return "", "", false, malformedDescriptor(s, "empty class name")
		}
		return name, s[i+end+1:], true, nil
	default:
		return "", "", false, malformedDescriptor(s, "unknown type "+string(s[i]))
	}
}

func malformedDescriptor(desc, reason string) error {
	return errors.Newf(errors.CodeMalformedClassFile, "malformed descriptor %q: %s", desc, reason)
}
