// # internal/engine/graph/engine.go
package graph

import (
	"sort"
	"sync"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/engine/analyzer"
	"unusedclass/internal/shared/observability"
)

// Duplicate records a class name that was ingested more than once. The
// later source replaced the earlier one.
type Duplicate struct {
	Name     string
	Previous string
	Current  string
}

type Stats struct {
	Classes    int
	Edges      int
	Framework  int
	Duplicates int
}

// Engine accumulates the reference graph of one check. It is finalized by
// the first call to Report; further Ingest calls are rejected.
type Engine struct {
	mu sync.RWMutex

	refs      map[string]map[string]struct{} // class -> referenced classes
	framework map[string]bool
	sources   map[string]string
	edges     int

	duplicates []Duplicate
	finalized  bool
	report     []string
}

func NewEngine() *Engine {
	return &Engine{
		refs:      make(map[string]map[string]struct{}),
		framework: make(map[string]bool),
		sources:   make(map[string]string),
	}
}

// Ingest records the facts of one class. A class name seen before is
// replaced wholesale.
func (e *Engine) Ingest(facts analyzer.ClassFacts) (*Duplicate, error) {
	if facts.Name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "class facts without a name")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		err := errors.New(errors.CodeInternal, "ingest after report")
		return nil, errors.AddContext(err, errors.CtxClass, facts.Name)
	}

	var dup *Duplicate
	if previous, exists := e.refs[facts.Name]; exists {
		e.edges -= len(previous)
		d := Duplicate{Name: facts.Name, Previous: e.sources[facts.Name], Current: facts.Source}
		e.duplicates = append(e.duplicates, d)
		dup = &d
	}

	refs := make(map[string]struct{}, len(facts.References))
	for name := range facts.References {
		refs[name] = struct{}{}
	}
	e.refs[facts.Name] = refs
	e.edges += len(refs)
	e.sources[facts.Name] = facts.Source
	if facts.FrameworkEntered {
		e.framework[facts.Name] = true
	} else {
		delete(e.framework, facts.Name)
	}

	observability.GraphNodes.Set(float64(len(e.refs)))
	observability.GraphEdges.Set(float64(e.edges))
	return dup, nil
}

// Report finalizes the engine and returns every class that is neither
// referenced by any ingested class nor framework entered, sorted.
func (e *Engine) Report() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.finalized {
		e.report = e.unusedLocked()
		e.finalized = true
		observability.UnusedClasses.Set(float64(len(e.report)))
	}
	out := make([]string, len(e.report))
	copy(out, e.report)
	return out
}

func (e *Engine) unusedLocked() []string {
	used := make(map[string]struct{})
	for _, targets := range e.refs {
		for name := range targets {
			used[name] = struct{}{}
		}
	}

	unused := make([]string, 0)
	for name := range e.refs {
		if _, ok := used[name]; ok {
			continue
		}
		if e.framework[name] {
			continue
		}
		unused = append(unused, name)
	}
	sort.Strings(unused)
	return unused
}

func (e *Engine) Finalized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.finalized
}

// Classes returns every ingested class name, sorted.
func (e *Engine) Classes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0, len(e.refs))
	for name := range e.refs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// References returns the sorted reference set of name, or nil when the
// class was never ingested.
func (e *Engine) References(name string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	targets, ok := e.refs[name]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(targets))
	for t := range targets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// InboundCount is the number of ingested classes that reference name. A
// self reference counts.
func (e *Engine) InboundCount(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := 0
	for _, targets := range e.refs {
		if _, ok := targets[name]; ok {
			n++
		}
	}
	return n
}

// FrameworkEntered returns the sorted names of framework entered classes.
func (e *Engine) FrameworkEntered() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]string, 0, len(e.framework))
	for name := range e.framework {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) IsFrameworkEntered(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.framework[name]
}

// Source is the file the current facts for name came from.
func (e *Engine) Source(name string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sources[name]
}

func (e *Engine) Duplicates() []Duplicate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]Duplicate, len(e.duplicates))
	copy(out, e.duplicates)
	return out
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return Stats{
		Classes:    len(e.refs),
		Edges:      e.edges,
		Framework:  len(e.framework),
		Duplicates: len(e.duplicates),
	}
}
