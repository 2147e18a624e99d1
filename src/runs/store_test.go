//go:build unit

package runs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walkforward/src/datamodels"
	"walkforward/src/utils/errors"
)

func newTestStore(t *testing.T) *FileRunStore {
	t.Helper()
	store, err := NewFileRunStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestFileRunStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	params := datamodels.DefaultBacktestParams()
	created, err := store.Create(ctx, "my run", &params)
	require.NoError(t, err)

	assert.NotEmpty(t, created.RunID)
	assert.NotContains(t, created.RunID, "-")
	assert.Equal(t, datamodels.RunStatusQueued, created.Status)

	got, err := store.Get(ctx, created.RunID)
	require.NoError(t, err)
	assert.Equal(t, created.RunID, got.RunID)
	assert.Equal(t, "my run", got.Name)
	require.NotNil(t, got.Params)
	assert.Equal(t, params.Tickers, got.Params.Tickers)
}

func TestFileRunStoreGetUnknownRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestFileRunStoreUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	manifest, err := store.Create(ctx, "", nil)
	require.NoError(t, err)

	now := time.Now().UTC()
	manifest.Status = datamodels.RunStatusFailed
	manifest.Error = "price data missing"
	manifest.StartedAt = &now
	require.NoError(t, store.Update(ctx, manifest))

	got, err := store.Get(ctx, manifest.RunID)
	require.NoError(t, err)
	assert.Equal(t, datamodels.RunStatusFailed, got.Status)
	assert.Equal(t, "price data missing", got.Error)
	require.NotNil(t, got.StartedAt)
}

func TestFileRunStoreUpdateUnknownRun(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), &datamodels.RunManifest{RunID: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestFileRunStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "first", nil)
	require.NoError(t, err)
	second, err := store.Create(ctx, "second", nil)
	require.NoError(t, err)
	// force distinct creation times regardless of clock resolution
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	require.NoError(t, store.Update(ctx, second))

	// stray directories without a manifest are not runs
	require.NoError(t, os.MkdirAll(filepath.Join(store.BaseDir(), "not-a-run"), 0755))

	manifests, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, second.RunID, manifests[0].RunID)
	assert.Equal(t, first.RunID, manifests[1].RunID)
}

func TestFileRunStoreArtifacts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	manifest, err := store.Create(ctx, "", nil)
	require.NoError(t, err)

	runDir := store.RunDir(manifest.RunID)
	require.NoError(t, os.MkdirAll(filepath.Join(runDir, "charts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "equity.csv"), []byte("Date,Equity\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(runDir, "charts", "equity.png"), []byte{0x89}, 0644))

	files, err := store.Artifacts(ctx, manifest.RunID)
	require.NoError(t, err)
	assert.Equal(t, []string{"charts/equity.png", "equity.csv", "run.json"}, files)
}

func TestFileRunStoreArtifactsUnknownRun(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Artifacts(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}
