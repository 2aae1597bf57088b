package graph

import (
	"errors"
	"fmt"
	"sort"
)

var ErrClassNotFound = errors.New("class not found")

// Explanation says why a class is or is not reported: who references it,
// directly and through other classes, and whether a framework enters it.
type Explanation struct {
	Class               string
	Source              string
	FrameworkEntered    bool
	Unused              bool
	References          []string
	DirectReferrers     []string
	TransitiveReferrers []string
}

type ClassNotFoundError struct {
	Class string
}

func (e *ClassNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrClassNotFound, e.Class)
}

func (e *ClassNotFoundError) Unwrap() error {
	return ErrClassNotFound
}

// Explain builds the Explanation for an ingested class. Referrers are
// limited to ingested classes; the class itself is never listed as its own
// referrer.
func (e *Engine) Explain(name string) (Explanation, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	refs, ok := e.refs[name]
	if !ok {
		return Explanation{}, &ClassNotFoundError{Class: name}
	}

	referrers := e.referrersLocked()

	ex := Explanation{
		Class:            name,
		Source:           e.sources[name],
		FrameworkEntered: e.framework[name],
		References:       sortedKeys(refs),
	}

	direct := make([]string, 0, len(referrers[name]))
	for from := range referrers[name] {
		if from != name {
			direct = append(direct, from)
		}
	}
	sort.Strings(direct)
	ex.DirectReferrers = direct
	ex.Unused = !ex.FrameworkEntered && len(referrers[name]) == 0

	seen := map[string]bool{name: true}
	for _, from := range direct {
		seen[from] = true
	}
	queue := append([]string(nil), direct...)
	transitive := make([]string, 0)
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for next := range referrers[curr] {
			if seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
			transitive = append(transitive, next)
		}
	}
	sort.Strings(transitive)
	ex.TransitiveReferrers = transitive

	return ex, nil
}

// referrersLocked inverts the reference graph over ingested classes.
func (e *Engine) referrersLocked() map[string]map[string]struct{} {
	inverse := make(map[string]map[string]struct{}, len(e.refs))
	for from, targets := range e.refs {
		for to := range targets {
			set, ok := inverse[to]
			if !ok {
				set = make(map[string]struct{})
				inverse[to] = set
			}
			set[from] = struct{}{}
		}
	}
	return inverse
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
