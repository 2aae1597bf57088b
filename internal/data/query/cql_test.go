package query

import (
	"context"
	"testing"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/engine/analyzer"
	"unusedclass/internal/engine/graph"
)

func seedResult(t *testing.T) ports.CheckResult {
	t.Helper()
	engine := graph.NewEngine()
	ingest := func(name string, framework bool, refs ...string) {
		set := make(map[string]struct{}, len(refs))
		for _, r := range refs {
			set[r] = struct{}{}
		}
		if _, err := engine.Ingest(analyzer.ClassFacts{
			Name:             name,
			References:       set,
			FrameworkEntered: framework,
			Source:           "/classes/" + name + ".class",
		}); err != nil {
			t.Fatalf("ingest %s: %v", name, err)
		}
	}
	ingest("app/web/Ctrl", true, "app/core/Svc")
	ingest("app/core/Svc", false, "app/core/Repo", "java/lang/Object")
	ingest("app/core/Repo", false, "java/lang/Object")
	ingest("app/util/Dead", false, "app/core/Repo")
	ingest("Main", false)

	return ports.CheckResult{Unused: engine.Report(), Engine: engine}
}

func TestParseCQL(t *testing.T) {
	query, err := ParseCQL(`SELECT classes WHERE inbound > 0 AND name CONTAINS "app/"`)
	if err != nil {
		t.Fatalf("parse cql: %v", err)
	}
	if query.Target != "classes" {
		t.Fatalf("expected target classes, got %q", query.Target)
	}
	if len(query.Conditions) != 2 {
		t.Fatalf("expected 2 conditions, got %d", len(query.Conditions))
	}
	if c := query.Conditions[1]; c.Op != "contains" || c.StrVal != "app/" || !c.IsStr {
		t.Fatalf("unexpected condition %+v", c)
	}
}

func TestParseCQL_Invalid(t *testing.T) {
	for _, raw := range []string{
		"DELETE FROM classes",
		"SELECT modules",
		"SELECT classes WHERE size > 3",
		`SELECT classes WHERE inbound = "x"`,
		"SELECT classes WHERE name > 1",
		"SELECT classes WHERE name ~ foo",
	} {
		if _, err := ParseCQL(raw); err == nil {
			t.Fatalf("expected %q to fail", raw)
		}
	}
}

func TestService_ExecuteCQL(t *testing.T) {
	svc := NewService(seedResult(t))

	tests := []struct {
		query string
		limit int
		want  []string
	}{
		{query: "SELECT classes", want: []string{"Main", "app/core/Repo", "app/core/Svc", "app/util/Dead", "app/web/Ctrl"}},
		{query: "SELECT classes WHERE unused = 1", want: []string{"Main", "app/util/Dead"}},
		{query: "select classes where inbound >= 2", want: []string{"app/core/Repo"}},
		{query: `SELECT classes WHERE package = "app/core" AND outbound > 1`, want: []string{"app/core/Svc"}},
		{query: "SELECT classes WHERE framework = 1", want: []string{"app/web/Ctrl"}},
		{query: `SELECT classes WHERE name CONTAINS "app/"`, limit: 2, want: []string{"app/core/Repo", "app/core/Svc"}},
		{query: `SELECT classes WHERE package != "app/core"`, want: []string{"Main", "app/util/Dead", "app/web/Ctrl"}},
	}
	for _, tt := range tests {
		rows, err := svc.ExecuteCQL(context.Background(), tt.query, tt.limit)
		if err != nil {
			t.Fatalf("%s: %v", tt.query, err)
		}
		got := make([]string, 0, len(rows))
		for _, r := range rows {
			got = append(got, r.Name)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.query, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: got %v, want %v", tt.query, got, tt.want)
			}
		}
	}
}

func TestService_Rows(t *testing.T) {
	rows, err := NewService(seedResult(t)).Rows(context.Background())
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	var repo ClassRow
	for _, r := range rows {
		if r.Name == "app/core/Repo" {
			repo = r
		}
	}
	want := ClassRow{
		Name:     "app/core/Repo",
		Package:  "app/core",
		Source:   "/classes/app/core/Repo.class",
		Inbound:  2,
		Outbound: 1,
	}
	if repo != want {
		t.Fatalf("got %+v, want %+v", repo, want)
	}
}

func TestService_Errors(t *testing.T) {
	_, err := NewService(ports.CheckResult{}).Rows(context.Background())
	if !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	_, err = NewService(seedResult(t)).ExecuteCQL(context.Background(), "SELECT nothing", 0)
	if !errors.IsCode(err, errors.CodeInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewService(seedResult(t)).Rows(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
