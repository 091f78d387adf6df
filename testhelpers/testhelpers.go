// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"cmbcompanion/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestProject creates a project record with the given name and an
// empty document model, and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// SetSetting writes one document global value, creating the record when
// the seed has not run.
func SetSetting(t *testing.T, app *pocketbase.PocketBase, key, value string) {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("settings")
	if err != nil {
		t.Fatalf("failed to find settings collection: %v", err)
	}

	records, _ := app.FindRecordsByFilter(col, "key = {:key}", "", 1, 0, map[string]any{"key": key})
	var record *core.Record
	if len(records) > 0 {
		record = records[0]
	} else {
		record = core.NewRecord(col)
		record.Set("key", key)
	}
	record.Set("value", value)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save setting %q: %v", key, err)
	}
}
