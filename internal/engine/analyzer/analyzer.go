// Package analyzer derives per-class reference facts from decoded class
// files.
package analyzer

import (
	"sort"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/engine/classfile"
)

// ClassFacts is everything the unused-class engine needs from one class.
type ClassFacts struct {
	Name             string
	References       map[string]struct{}
	FrameworkEntered bool
	// Source is the file the facts were read from, for diagnostics only.
	Source string
}

// SortedReferences returns the reference set in ascending order.
func (f ClassFacts) SortedReferences() []string {
	out := make([]string, 0, len(f.References))
	for name := range f.References {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Refers reports whether name is in the reference set.
func (f ClassFacts) Refers(name string) bool {
	_, ok := f.References[name]
	return ok
}

type Analyzer struct {
	markers MarkerSet
}

func New(markers MarkerSet) *Analyzer {
	return &Analyzer{markers: markers}
}

// Analyze collects signature-level references: the superclass, interfaces,
// field types and method argument/return types. InnerClasses and Signature
// attributes are not consulted.
func (a *Analyzer) Analyze(cf *classfile.ClassFile) (ClassFacts, error) {
	if cf == nil || cf.ThisClass == "" {
		return ClassFacts{}, errors.New(errors.CodeMalformedClassFile, "class file has no name")
	}

	facts := ClassFacts{
		Name:       cf.ThisClass,
		References: make(map[string]struct{}),
	}
	add := func(name string) {
		facts.References[name] = struct{}{}
	}

	if cf.HasSuperClass() {
		add(cf.SuperClass)
	}
	for _, iface := range cf.Interfaces {
		add(iface)
	}
	for _, field := range cf.Fields {
		name, ok, err := FieldClass(field.Descriptor)
		if err != nil {
			return ClassFacts{}, errors.AddContext(err, errors.CtxClass, cf.ThisClass)
		}
		if ok {
			add(name)
		}
	}
	for _, method := range cf.Methods {
		names, err := MethodClasses(method.Descriptor)
		if err != nil {
			return ClassFacts{}, errors.AddContext(err, errors.CtxClass, cf.ThisClass)
		}
		for _, name := range names {
			add(name)
		}
	}
	for _, ann := range cf.Annotations {
		if a.markers.Contains(ann.Descriptor) {
			facts.FrameworkEntered = true
			break
		}
	}
	return facts, nil
}

// AnalyzeFile decodes and analyzes one class file.
func (a *Analyzer) AnalyzeFile(path string) (ClassFacts, error) {
	cf, err := classfile.DecodeFile(path)
	if err != nil {
		return ClassFacts{}, err
	}
	facts, err := a.Analyze(cf)
	if err != nil {
		return ClassFacts{}, errors.AddContext(err, errors.CtxPath, path)
	}
	facts.Source = path
	return facts, nil
}
