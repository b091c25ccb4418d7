package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"finanzas/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingImporter struct {
	got []core.Record
}

func (r *recordingImporter) Import(_ context.Context, records []core.Record) (int, error) {
	r.got = append(r.got, records...)
	return len(records), nil
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id":"a","description":"Supermercado semana","amount":"-45.3","type":"gasto","createdAt":"2024-01-05T10:00:00Z","userId":"alice"},
		{"id":"b","description":"Nómina","amount":1500,"type":"ingreso","category":"Income","date":"2024-01-01","ownerId":"alice"}
	]`), 0o600))

	imp := &recordingImporter{}
	n, err := ImportFile(context.Background(), imp, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	legacy := imp.got[0].Transaction()
	assert.Equal(t, "alice", legacy.OwnerID)
	assert.Equal(t, core.Category("Supermercado"), legacy.Category)
	assert.Equal(t, core.TypeExpense, legacy.Type)
	assert.Equal(t, core.NewDate(2024, time.January, 5), legacy.Date)
}

func TestImportFileErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := ImportFile(ctx, nil, filepath.Join(dir, "x.json"))
	assert.ErrorContains(t, err, "does not support import")

	_, err = ImportFile(ctx, &recordingImporter{}, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o600))
	_, err = ImportFile(ctx, &recordingImporter{}, bad)
	assert.ErrorContains(t, err, "decode")
}
