package query

import (
	"context"
	"path"
	"strings"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
)

var (
	intFields    = map[string]bool{"inbound": true, "outbound": true, "framework": true, "unused": true}
	stringFields = map[string]bool{"name": true, "package": true, "source": true}
)

// ClassRow is one class of a finished check as seen by queries. Framework
// and Unused are 0 or 1 so CQL can compare them like the counts; Unused
// follows the printed report, so exclude.classes matches are 0.
type ClassRow struct {
	Name      string `json:"name"`
	Package   string `json:"package"`
	Source    string `json:"source"`
	Inbound   int    `json:"inbound"`
	Outbound  int    `json:"outbound"`
	Framework int    `json:"framework"`
	Unused    int    `json:"unused"`
}

// Service answers read-only queries over the result of one check.
type Service struct {
	result ports.CheckResult
}

func NewService(result ports.CheckResult) *Service {
	return &Service{result: result}
}

// Rows returns every ingested class in name order.
func (s *Service) Rows(ctx context.Context) ([]ClassRow, error) {
	engine := s.result.Engine
	if engine == nil {
		return nil, errors.New(errors.CodeInvalidInput, "check result has no engine")
	}
	unused := make(map[string]bool, len(s.result.Unused))
	for _, name := range s.result.Unused {
		unused[name] = true
	}

	names := engine.Classes()
	rows := make([]ClassRow, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = append(rows, ClassRow{
			Name:      name,
			Package:   packageOf(name),
			Source:    engine.Source(name),
			Inbound:   engine.InboundCount(name),
			Outbound:  len(engine.References(name)),
			Framework: boolInt(engine.IsFrameworkEntered(name)),
			Unused:    boolInt(unused[name]),
		})
	}
	return rows, nil
}

// ExecuteCQL runs raw against the check result. limit <= 0 means no limit.
func (s *Service) ExecuteCQL(ctx context.Context, raw string, limit int) ([]ClassRow, error) {
	query, err := ParseCQL(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "parse query")
	}
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ClassRow, 0, len(rows))
	for _, row := range rows {
		if !matchesAll(row, query.Conditions) {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func matchesAll(row ClassRow, conditions []CQLCondition) bool {
	for _, c := range conditions {
		if !matches(row, c) {
			return false
		}
	}
	return true
}

func matches(row ClassRow, c CQLCondition) bool {
	if c.IsInt {
		v := intField(row, c.Field)
		switch c.Op {
		case "=":
			return v == c.IntVal
		case "!=":
			return v != c.IntVal
		case ">":
			return v > c.IntVal
		case ">=":
			return v >= c.IntVal
		case "<":
			return v < c.IntVal
		case "<=":
			return v <= c.IntVal
		}
		return false
	}

	v := stringField(row, c.Field)
	switch c.Op {
	case "=":
		return v == c.StrVal
	case "!=":
		return v != c.StrVal
	case "contains":
		return strings.Contains(v, c.StrVal)
	}
	return false
}

func intField(row ClassRow, field string) int {
	switch field {
	case "inbound":
		return row.Inbound
	case "outbound":
		return row.Outbound
	case "framework":
		return row.Framework
	case "unused":
		return row.Unused
	}
	return 0
}

func stringField(row ClassRow, field string) string {
	switch field {
	case "name":
		return row.Name
	case "package":
		return row.Package
	case "source":
		return row.Source
	}
	return ""
}

func packageOf(name string) string {
	dir := path.Dir(name)
	if dir == "." {
		return ""
	}
	return dir
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
