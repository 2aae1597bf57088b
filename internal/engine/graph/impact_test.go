package graph

import (
	"errors"
	"testing"
)

func TestEngine_Explain(t *testing.T) {
	e := NewEngine()
	mustIngest(t, e, facts("com/x/Ctrl", true, "com/x/Svc"))
	mustIngest(t, e, facts("com/x/Svc", false, "com/x/Repo", "java/lang/String"))
	mustIngest(t, e, facts("com/x/Repo", false, "com/x/Repo"))
	mustIngest(t, e, facts("com/x/Dead", false))
	e.Report()

	ex, err := e.Explain("com/x/Repo")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if ex.Unused || ex.FrameworkEntered {
		t.Fatalf("unexpected flags: %+v", ex)
	}
	if !equalStrings(ex.DirectReferrers, []string{"com/x/Svc"}) {
		t.Fatalf("direct referrers = %v", ex.DirectReferrers)
	}
	if !equalStrings(ex.TransitiveReferrers, []string{"com/x/Ctrl"}) {
		t.Fatalf("transitive referrers = %v", ex.TransitiveReferrers)
	}
	if !equalStrings(ex.References, []string{"com/x/Repo"}) {
		t.Fatalf("references = %v", ex.References)
	}
	if ex.Source != "com/x/Repo.class" {
		t.Fatalf("source = %q", ex.Source)
	}

	dead, err := e.Explain("com/x/Dead")
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if !dead.Unused || len(dead.DirectReferrers) != 0 || len(dead.TransitiveReferrers) != 0 {
		t.Fatalf("unexpected explanation for dead class: %+v", dead)
	}

	ctrl, _ := e.Explain("com/x/Ctrl")
	if ctrl.Unused || !ctrl.FrameworkEntered {
		t.Fatalf("framework class must not be unused: %+v", ctrl)
	}
}

func TestEngine_ExplainUnknownClass(t *testing.T) {
	e := NewEngine()
	mustIngest(t, e, facts("com/x/A", false, "java/lang/Object"))

	_, err := e.Explain("java/lang/Object")
	if !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("expected ErrClassNotFound, got %v", err)
	}
	var nf *ClassNotFoundError
	if !errors.As(err, &nf) || nf.Class != "java/lang/Object" {
		t.Fatalf("unexpected error %v", err)
	}
}
