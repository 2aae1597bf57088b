package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"unusedclass/internal/core/config"
	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/data/history"
	"unusedclass/internal/engine/classfile/classfiletest"
	"unusedclass/internal/ui/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const object = "java/lang/Object"

func newTestApp(t *testing.T, roots []string, mutate ...func(*config.Config)) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ClassRoots = roots
	cfg.Scan.Workers = 4
	for _, m := range mutate {
		m(cfg)
	}
	a, err := New(cfg, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func writeClass(t *testing.T, dir string, b *classfiletest.Builder) string {
	t.Helper()
	path, err := b.WriteFile(dir)
	require.NoError(t, err)
	return path
}

func check(t *testing.T, a *App) ports.CheckResult {
	t.Helper()
	result, err := a.Check(context.Background(), nil)
	require.NoError(t, err)
	return result
}

func TestCheck_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		classes []*classfiletest.Builder
		want    []string
	}{
		{
			name:    "PlainClass",
			classes: []*classfiletest.Builder{classfiletest.New("com/x/A", object)},
			want:    []string{"com/x/A"},
		},
		{
			name: "MutualReference",
			classes: []*classfiletest.Builder{
				classfiletest.New("com/x/A", object).Field("b", "Lcom/x/B;"),
				classfiletest.New("com/x/B", object).Field("a", "Lcom/x/A;"),
			},
			want: nil,
		},
		{
			name: "DeadLeaf",
			classes: []*classfiletest.Builder{
				classfiletest.New("com/x/A", object).Method("use", "(Lcom/x/B;)V"),
				classfiletest.New("com/x/B", object),
				classfiletest.New("com/x/C", object),
			},
			// A itself is unreferenced as well.
			want: []string{"com/x/A", "com/x/C"},
		},
		{
			name: "FrameworkEntered",
			classes: []*classfiletest.Builder{
				classfiletest.New("com/x/Ctrl", object).Annotation("Lorg/springframework/stereotype/Controller;", true),
			},
			want: nil,
		},
		{
			name: "InterfaceAndArrayField",
			classes: []*classfiletest.Builder{
				classfiletest.New("com/x/I", object).Access(classfiletest.AccPublic | classfiletest.AccInterface | classfiletest.AccAbstract),
				classfiletest.New("com/x/Impl", object).Interfaces("com/x/I").Field("grid", "[[Lcom/x/I;"),
			},
			want: []string{"com/x/Impl"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for _, b := range tt.classes {
				writeClass(t, root, b)
			}
			result := check(t, newTestApp(t, []string{root}))

			if tt.want == nil {
				assert.Empty(t, result.Unused)
			} else {
				assert.Equal(t, tt.want, result.Unused)
			}
			assert.Equal(t, len(tt.classes), result.Files)
			assert.Equal(t, len(tt.classes), result.Stats.Classes)
			assert.Empty(t, result.Skipped)
			assert.True(t, result.Engine.Finalized())
		})
	}
}

func TestCheck_MalformedFileIsSkipped(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	bad := filepath.Join(root, "com", "x", "Broken.class")
	require.NoError(t, os.WriteFile(bad, []byte{0x13, 0x37, 0x00, 0x42, 0x99}, 0o644))

	result := check(t, newTestApp(t, []string{root}))

	assert.Equal(t, []string{"com/x/A"}, result.Unused)
	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 1, result.Stats.Classes)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, bad, result.Skipped[0].Path)
	assert.Equal(t, errors.CodeMalformedClassFile, result.Skipped[0].Code)
}

func TestCheck_IsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object).Method("run", "(Lcom/x/B;[I)Lcom/x/C;"))
	writeClass(t, root, classfiletest.New("com/x/B", object))
	writeClass(t, root, classfiletest.New("com/x/C", object))
	writeClass(t, root, classfiletest.New("com/x/D", object))
	a := newTestApp(t, []string{root})

	var first, second bytes.Buffer
	require.NoError(t, report.WriteText(&first, check(t, a).Unused, false))
	require.NoError(t, report.WriteText(&second, check(t, a).Unused, false))

	assert.Equal(t, first.String(), second.String())
	assert.Equal(t, "Unused classes (2):\n  UNUSED com/x/A\n  UNUSED com/x/D\n", first.String())
}

func TestCheck_RootErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := newTestApp(t, []string{missing}).Check(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput), "got %v", err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = newTestApp(t, []string{file}).Check(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput), "got %v", err)

	_, err = newTestApp(t, nil).Check(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput), "got %v", err)
}

func TestCheck_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestApp(t, []string{root}).Check(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck_DuplicatesLastWriterWins(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeClass(t, first, classfiletest.New("com/x/A", object).Field("b", "Lcom/x/B;"))
	writeClass(t, first, classfiletest.New("com/x/B", object))
	dup := writeClass(t, second, classfiletest.New("com/x/A", object))

	result := check(t, newTestApp(t, []string{first, second}))

	// The second root's A drops the reference to B.
	assert.Equal(t, []string{"com/x/A", "com/x/B"}, result.Unused)
	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "com/x/A", result.Duplicates[0].Name)
	assert.Equal(t, dup, result.Duplicates[0].Current)
	assert.Equal(t, dup, result.Engine.Source("com/x/A"))
}

func TestCheck_ExcludeClassesHidesFromReport(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	writeClass(t, root, classfiletest.New("com/x/gen/G1", object))
	writeClass(t, root, classfiletest.New("com/x/gen/G2", object))

	a := newTestApp(t, []string{root}, func(c *config.Config) {
		c.Exclude.Classes = []string{"com/x/gen/*"}
	})
	result := check(t, a)

	assert.Equal(t, []string{"com/x/A"}, result.Unused)
	assert.Equal(t, 2, result.Hidden)
	assert.Equal(t, []string{"com/x/A", "com/x/gen/G1", "com/x/gen/G2"}, result.Engine.Report())
}

func TestCheck_ExtraFrameworkMarkers(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/Named", object).Annotation("Ljakarta/inject/Named;", false))
	writeClass(t, root, classfiletest.New("com/x/Svc", object).Annotation("Lorg/springframework/stereotype/Service;", true))

	withDefaults := check(t, newTestApp(t, []string{root}, func(c *config.Config) {
		c.Framework.Markers = []string{"Ljakarta/inject/Named;"}
	}))
	assert.Empty(t, withDefaults.Unused)

	off := false
	withoutDefaults := check(t, newTestApp(t, []string{root}, func(c *config.Config) {
		c.Framework.UseDefaults = &off
		c.Framework.Markers = []string{"Ljakarta/inject/Named;"}
	}))
	assert.Equal(t, []string{"com/x/Svc"}, withoutDefaults.Unused)
}

func TestScanDirectories_OrderAndFilters(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("b/Z", object))
	writeClass(t, root, classfiletest.New("a/Y", object))
	writeClass(t, root, classfiletest.New("META-INF/versions/Q", object))
	require.NoError(t, os.WriteFile(filepath.Join(root, "module-info.class"), []byte{0}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Upper.CLASS"), []byte{0}, 0o644))

	a := newTestApp(t, []string{root}, func(c *config.Config) {
		c.Exclude.Dirs = []string{"META-INF"}
	})
	files, err := a.ScanDirectories(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "a", "Y.class"),
		filepath.Join(root, "b", "Z.class"),
		filepath.Join(root, "module-info.class"),
	}, files)
}

func TestCheck_DefaultConfigScansPackageInfo(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/package-info", object).Access(0x1600))
	writeClass(t, root, classfiletest.New("com/x/Lower", object))
	require.NoError(t, os.WriteFile(filepath.Join(root, "com", "x", "Upper.CLASS"), classfiletest.New("com/x/Upper", object).Bytes(), 0o644))

	result := check(t, newTestApp(t, []string{root}))

	assert.Equal(t, 2, result.Files)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, []string{"com/x/Lower", "com/x/package-info"}, result.Unused)
}

func TestScanDirectories_MaxDepth(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("Top", object))
	writeClass(t, root, classfiletest.New("a/Mid", object))
	writeClass(t, root, classfiletest.New("a/b/Deep", object))

	a := newTestApp(t, []string{root}, func(c *config.Config) { c.Scan.MaxDepth = 1 })
	files, err := a.ScanDirectories(context.Background(), []string{root})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "Top.class"),
		filepath.Join(root, "a", "Mid.class"),
	}, files)
}

func TestScanDirectories_SymlinkLoop(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("a/A", object))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "a", "loop")))

	a := newTestApp(t, []string{root})
	files, err := a.ScanDirectories(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a", "A.class")}, files)
}

func TestScanDirectories_SymlinkedFiles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	outside := t.TempDir()
	target := writeClass(t, outside, classfiletest.New("Ext", object))
	link := filepath.Join(root, "Ext.class")
	require.NoError(t, os.Symlink(target, link))

	followed, err := newTestApp(t, []string{root}).ScanDirectories(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Equal(t, []string{link}, followed)

	off := false
	a := newTestApp(t, []string{root}, func(c *config.Config) { c.Scan.FollowSymlinks = &off })
	skipped, err := a.ScanDirectories(context.Background(), []string{root})
	require.NoError(t, err)
	assert.Empty(t, skipped)
}

func TestGenerateOutputs(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	out := t.TempDir()

	a := newTestApp(t, []string{root}, func(c *config.Config) {
		c.Output = config.Output{
			TSV:      filepath.Join(out, "unused.tsv"),
			JSON:     filepath.Join(out, "unused.json"),
			SARIF:    filepath.Join(out, "sarif", "unused.sarif"),
			DOT:      filepath.Join(out, "refs.dot"),
			Markdown: filepath.Join(out, "UNUSED.md"),
		}
	})
	result := check(t, a)

	written, err := a.CheckService().WriteOutputs(context.Background(), result)
	require.NoError(t, err)
	require.Len(t, written, 5)
	for _, path := range written {
		data, err := os.ReadFile(path)
		require.NoError(t, err, path)
		assert.Contains(t, string(data), "com/x/A", path)
	}
}

func TestRecordHistory(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	a := newTestApp(t, []string{root})

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	svc := a.CheckService()
	req := ports.HistoryRequest{ProjectKey: "acme", Window: time.Hour}

	first, err := svc.RecordHistory(context.Background(), store, check(t, a), req)
	require.NoError(t, err)
	assert.Nil(t, first.Change)
	assert.NotEmpty(t, first.Snapshot.RunID)
	require.NotNil(t, first.Report)
	assert.Equal(t, 1, first.Report.ScanCount)

	writeClass(t, root, classfiletest.New("com/x/B", object))
	second, err := svc.RecordHistory(context.Background(), store, check(t, a), req)
	require.NoError(t, err)
	require.NotNil(t, second.Change)
	assert.Equal(t, first.Snapshot.RunID, second.Change.PreviousRunID)
	assert.Equal(t, []string{"com/x/B"}, second.Change.NewlyUnused)
	assert.Empty(t, second.Change.NoLongerUnused)
	assert.Equal(t, 2, second.Report.ScanCount)

	_, err = svc.RecordHistory(context.Background(), nil, ports.CheckResult{}, req)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
}

func TestHandleChangesEmitsUpdate(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	a := newTestApp(t, []string{root})

	var (
		mu      sync.Mutex
		updates []ports.CheckResult
	)
	require.NoError(t, a.CheckService().WatchService().Subscribe(context.Background(), func(r ports.CheckResult, err error) {
		require.NoError(t, err)
		mu.Lock()
		updates = append(updates, r)
		mu.Unlock()
	}))

	a.HandleChanges(context.Background(), []string{filepath.Join(root, "com", "x", "A.class")})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 1)
	assert.Equal(t, []string{"com/x/A"}, updates[0].Unused)
	last, ok := a.LastResult()
	require.True(t, ok)
	assert.Equal(t, updates[0].Unused, last.Unused)
}

func TestWatchRechecksOnClassChange(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	a := newTestApp(t, []string{root}, func(c *config.Config) { c.Watch.Debounce = 50 * time.Millisecond })

	updates := make(chan ports.CheckResult, 16)
	watch := a.CheckService().WatchService()
	require.NoError(t, watch.Subscribe(t.Context(), func(r ports.CheckResult, err error) {
		if err != nil {
			return
		}
		select {
		case updates <- r:
		default:
		}
	}))
	require.NoError(t, watch.Start(t.Context()))
	defer func() { _ = watch.Stop() }()

	writeClass(t, root, classfiletest.New("com/x/B", object).Field("a", "Lcom/x/A;"))

	// A re-check can race the write and see a truncated file, so wait for
	// the settled result.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-updates:
			if len(r.Skipped) == 0 {
				assert.Equal(t, []string{"com/x/B"}, r.Unused)
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for re-check")
		}
	}
}

func TestUpdateConfig(t *testing.T) {
	root := t.TempDir()
	writeClass(t, root, classfiletest.New("com/x/A", object))
	writeClass(t, root, classfiletest.New("com/x/B", object))
	a := newTestApp(t, []string{root})
	assert.Equal(t, []string{"com/x/A", "com/x/B"}, check(t, a).Unused)

	cfg := config.DefaultConfig()
	cfg.ClassRoots = []string{root}
	cfg.Exclude.Classes = []string{"com/x/B"}
	require.NoError(t, a.CheckService().UpdateConfig(context.Background(), cfg))

	assert.Equal(t, []string{"com/x/A"}, check(t, a).Unused)

	bad := config.DefaultConfig()
	bad.Exclude.Dirs = []string{"[unclosed"}
	err := a.UpdateConfig(bad)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError), "got %v", err)
}

func TestHealthService(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, []string{root, filepath.Join(root, "missing")})

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "pending", status.Components["last_check"])
	assert.Equal(t, "ok", status.Components["root:"+root])
	assert.Equal(t, "missing", status.Components["root:"+filepath.Join(root, "missing")])
}
