package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"unusedclass/internal/core/errors"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/engine/classfile/classfiletest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoots(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	got := normalizeRoots([]string{" classes ", "", "classes", filepath.Join(cwd, "classes"), "other"})
	assert.Equal(t, []string{filepath.Join(cwd, "classes"), filepath.Join(cwd, "other")}, got)
	assert.Empty(t, normalizeRoots(nil))
}

func TestCheckService_CheckUsesRequestRoots(t *testing.T) {
	configured := t.TempDir()
	requested := t.TempDir()
	writeClass(t, configured, classfiletest.New("com/x/Configured", object))
	writeClass(t, requested, classfiletest.New("com/x/Requested", object))

	svc := newTestApp(t, []string{configured}).CheckService()

	result, err := svc.Check(context.Background(), ports.CheckRequest{Roots: []string{requested}})
	require.NoError(t, err)
	assert.Equal(t, []string{"com/x/Requested"}, result.Unused)

	result, err = svc.Check(context.Background(), ports.CheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"com/x/Configured"}, result.Unused)
}

func TestCheckService_ErrorsCarryOperation(t *testing.T) {
	svc := newTestApp(t, []string{filepath.Join(t.TempDir(), "missing")}).CheckService()

	_, err := svc.Check(context.Background(), ports.CheckRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
	assert.Contains(t, err.Error(), "check")
}

func TestCheckService_RejectsCancelledContext(t *testing.T) {
	svc := newTestApp(t, []string{t.TempDir()}).CheckService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Check(ctx, ports.CheckRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = svc.WriteOutputs(ctx, ports.CheckResult{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, svc.UpdateConfig(ctx, nil), context.Canceled)
	assert.ErrorIs(t, svc.WatchService().Start(ctx), context.Canceled)
}

func TestCheckService_RequiresApp(t *testing.T) {
	svc := NewCheckService(nil)

	_, err := svc.Check(context.Background(), ports.CheckRequest{})
	assert.Error(t, err)
	_, err = svc.WriteOutputs(context.Background(), ports.CheckResult{})
	assert.Error(t, err)
	assert.Error(t, svc.WatchService().Start(context.Background()))
	assert.Error(t, svc.WatchService().Subscribe(context.Background(), func(ports.CheckResult, error) {}))
}

func TestCheckService_UpdateConfigRequiresConfig(t *testing.T) {
	svc := newTestApp(t, []string{t.TempDir()}).CheckService()
	err := svc.UpdateConfig(context.Background(), nil)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidInput))
}

func TestWatchService_SubscribeRequiresHandler(t *testing.T) {
	svc := newTestApp(t, []string{t.TempDir()}).CheckService()
	assert.Error(t, svc.WatchService().Subscribe(context.Background(), nil))
}

func TestWatchService_StopWithoutStart(t *testing.T) {
	svc := newTestApp(t, []string{t.TempDir()}).CheckService()
	assert.NoError(t, svc.WatchService().Stop())
}
