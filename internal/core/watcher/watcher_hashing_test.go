package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"unusedclass/internal/engine/classfile/classfiletest"
)

func TestWatcher_IdenticalRewriteIsDropped(t *testing.T) {
	root := t.TempDir()

	changed := make(chan []string, 10)
	w, err := NewWatcher(50*time.Millisecond, nil, nil, func(paths []string) {
		changed <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{root}); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(root, "Target.class")
	original := classfiletest.New("Target", "java/lang/Object").Bytes()
	if err := os.WriteFile(target, original, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for create event")
	}

	// A rebuild that emits the same bytes must not trigger a re-check.
	if err := os.WriteFile(target, original, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changed:
		t.Fatalf("unexpected event for identical class bytes: %v", paths)
	case <-time.After(200 * time.Millisecond):
	}

	rebuilt := classfiletest.New("Target", "java/lang/Object").Field("next", "LTarget;").Bytes()
	if err := os.WriteFile(target, rebuilt, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changed:
		found := false
		for _, p := range paths {
			if p == target {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected event for %s, got %v", target, paths)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for changed class bytes")
	}
}
