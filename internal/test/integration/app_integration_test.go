package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"unusedclass/internal/core/app"
	"unusedclass/internal/core/config"
	"unusedclass/internal/core/ports"
	"unusedclass/internal/data/history"
	"unusedclass/internal/data/query"
	"unusedclass/internal/engine/classfile/classfiletest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const object = "java/lang/Object"

func createTestClasses(t *testing.T, root string) {
	builders := []*classfiletest.Builder{
		classfiletest.New("com/shop/web/OrderController", object).
			Annotation("Lorg/springframework/web/bind/annotation/RestController;", true).
			Field("orders", "Lcom/shop/core/OrderService;").
			Method("list", "()[Lcom/shop/core/Order;"),
		classfiletest.New("com/shop/core/OrderService", object).
			Annotation("Lorg/springframework/stereotype/Service;", true).
			Method("find", "(J)Lcom/shop/core/Order;"),
		classfiletest.New("com/shop/core/Order", object).
			Interfaces("java/io/Serializable"),
		classfiletest.New("com/shop/legacy/OldExporter", object).
			Method("export", "(Lcom/shop/core/Order;)V"),
		classfiletest.New("com/shop/gen/Generated", object),
	}
	for _, b := range builders {
		_, err := b.WriteFile(root)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(root, "module-info.class"), []byte{0xCA, 0xFE}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "com", "shop", "Truncated.class"), []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00}, 0o644))
}

func TestFullPipelineIntegration(t *testing.T) {
	tmpDir := t.TempDir()
	createTestClasses(t, filepath.Join(tmpDir, "target", "classes"))

	cfgPath := filepath.Join(tmpDir, "unusedclass.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
version = 1
class_roots = ["target/classes"]

[exclude]
files = ["module-info.class"]
classes = ["com/shop/gen/**"]

[output]
json = "reports/unused.json"
sarif = "reports/unused.sarif"

[db]
enabled = true
path = "data/history.db"
project = "shop"
`), 0o644))

	cfg, err := config.LoadOrDefault(cfgPath, true)
	require.NoError(t, err)

	appInstance, err := app.New(cfg, tmpDir)
	require.NoError(t, err)
	defer appInstance.Close()

	ctx := context.Background()
	svc := appInstance.CheckService()

	result, err := svc.Check(ctx, ports.CheckRequest{})
	require.NoError(t, err)

	// Verify the report
	assert.Equal(t, []string{"com/shop/legacy/OldExporter"}, result.Unused)
	assert.Equal(t, 1, result.Hidden)
	assert.Equal(t, 6, result.Files)
	assert.Equal(t, 5, result.Stats.Classes)
	assert.Equal(t, 2, result.Stats.Framework)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "Truncated.class", filepath.Base(result.Skipped[0].Path))

	// Verify outputs land next to the config file
	written, err := svc.WriteOutputs(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(tmpDir, "reports", "unused.json"),
		filepath.Join(tmpDir, "reports", "unused.sarif"),
	}, written)

	data, err := os.ReadFile(filepath.Join(tmpDir, "reports", "unused.json"))
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 1, doc["hidden"])

	// Verify history
	store, err := history.Open(appInstance.Paths().DBPath)
	require.NoError(t, err)
	defer store.Close()
	recorded, err := svc.RecordHistory(ctx, history.NewAdapter(store), result, ports.HistoryRequest{
		ProjectKey: cfg.DB.Project,
		Window:     time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, "shop", recorded.Snapshot.ProjectKey)
	assert.Equal(t, []string{"com/shop/legacy/OldExporter"}, recorded.Snapshot.Unused)
	assert.FileExists(t, filepath.Join(tmpDir, "data", "history.db"))

	// Verify queries over the same result
	rows, err := query.NewService(result).ExecuteCQL(ctx, `SELECT classes WHERE package = "com/shop/core"`, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "com/shop/core/Order", rows[0].Name)
	assert.Equal(t, 3, rows[0].Inbound)

	ex, err := result.Engine.Explain("com/shop/core/Order")
	require.NoError(t, err)
	assert.Equal(t, []string{"com/shop/core/OrderService", "com/shop/legacy/OldExporter", "com/shop/web/OrderController"}, ex.DirectReferrers)
	assert.Empty(t, ex.TransitiveReferrers)
}
