package formats

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"unusedclass/internal/core/ports"
	"unusedclass/internal/shared/util"
)

func sanitizeID(name string) string {
	if name == "" {
		return "c"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	first := rune(out[0])
	if unicode.IsDigit(first) {
		return "c_" + out
	}
	return out
}

func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// sourceOf returns the class file of name relative to the class root that
// contains it, with forward slashes, or "" when the source is unknown.
func sourceOf(result ports.CheckResult, name string) string {
	if result.Engine == nil {
		return ""
	}
	path := result.Engine.Source(name)
	if path == "" {
		return ""
	}
	root := rootFor(result.Roots, path)
	if root == "" {
		return filepath.ToSlash(path)
	}
	return util.SlashRelative(root, path)
}

// rootFor returns the longest root that contains path, or "".
func rootFor(roots []string, path string) string {
	best := ""
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	return best
}

func nonEmpty(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
