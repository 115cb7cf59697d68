package badger

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointStore_SaveAndLoad(t *testing.T) {
	store, backend, err := NewMemoryStore("gerard-index")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	checkpoint := &core.Checkpoint{
		LastCompletedBatch: 4,
		VectorsWritten:     250,
		PartialIndexPath:   "/data/gerard/index",
	}

	require.NoError(t, store.Save(ctx, checkpoint))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, int64(4), loaded.LastCompletedBatch)
	assert.Equal(t, int64(250), loaded.VectorsWritten)
	assert.Equal(t, "/data/gerard/index", loaded.PartialIndexPath)
	assert.WithinDuration(t, time.Now().UTC(), loaded.UpdatedAt, 5*time.Second,
		"Save should stamp UpdatedAt")
}

func TestCheckpointStore_LoadMissing(t *testing.T) {
	store, backend, err := NewMemoryStore("gerard-index")
	require.NoError(t, err)
	defer backend.Close()

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded, "absent checkpoint should be nil, nil")
}

func TestCheckpointStore_SaveOverwrites(t *testing.T) {
	store, backend, err := NewMemoryStore("gerard-index")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &core.Checkpoint{
		LastCompletedBatch: 1,
		VectorsWritten:     100,
		PartialIndexPath:   "/data/index",
	}))
	require.NoError(t, store.Save(ctx, &core.Checkpoint{
		LastCompletedBatch: 3,
		VectorsWritten:     200,
		PartialIndexPath:   "/data/index",
	}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(3), loaded.LastCompletedBatch)
	assert.Equal(t, int64(200), loaded.VectorsWritten)
}

func TestCheckpointStore_Clear(t *testing.T) {
	store, backend, err := NewMemoryStore("gerard-index")
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &core.Checkpoint{
		LastCompletedBatch: 0,
		VectorsWritten:     50,
		PartialIndexPath:   "/data/index",
	}))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCheckpointStore_ClearMissing(t *testing.T) {
	store, backend, err := NewMemoryStore("gerard-index")
	require.NoError(t, err)
	defer backend.Close()

	assert.NoError(t, store.Clear(context.Background()), "clearing an absent checkpoint is a no-op")
}

func TestCheckpointStore_JobScoping(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	first := NewCheckpointStore(backend, "series-one")
	second := NewCheckpointStore(backend, "series-two")

	ctx := context.Background()
	require.NoError(t, first.Save(ctx, &core.Checkpoint{
		LastCompletedBatch: 2,
		VectorsWritten:     150,
		PartialIndexPath:   "/data/one",
	}))

	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "jobs must not see each other's checkpoints")

	loaded, err = first.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "/data/one", loaded.PartialIndexPath)
}

func TestCheckpointStore_RejectsCorruptRecord(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	store := NewCheckpointStore(backend, "gerard-index")

	// Plant garbage at the checkpoint key.
	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey("gerard-index"), []byte{0xFF, 0xFF}); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.Error(t, err, "corrupt records must be rejected, not defaulted")
	assert.ErrorIs(t, err, storage.ErrSerializationFailed)
}

func TestCheckpointStore_RejectsInvalidRecord(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	store := NewCheckpointStore(backend, "gerard-index")

	// A record that decodes but breaks domain rules.
	bad := &core.Checkpoint{
		LastCompletedBatch: -7,
		VectorsWritten:     10,
		PartialIndexPath:   "/data/index",
		UpdatedAt:          time.Now().UTC(),
	}
	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeCheckpointKey("gerard-index"), storage.MarshalCheckpoint(bad)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidCheckpoint)
}

func TestCheckpointStore_ClosedBackend(t *testing.T) {
	store, backend, err := NewMemoryStore("gerard-index")
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	ctx := context.Background()
	checkpoint := &core.Checkpoint{
		LastCompletedBatch: 0,
		VectorsWritten:     50,
		PartialIndexPath:   "/data/index",
	}

	assert.ErrorIs(t, store.Save(ctx, checkpoint), storage.ErrStorageClosed)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	assert.ErrorIs(t, store.Clear(ctx), storage.ErrStorageClosed)
}

func TestCheckpointStore_PersistsAcrossReopen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file-backed test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)

	store := NewCheckpointStore(backend, "gerard-index")
	require.NoError(t, store.Save(ctx, &core.Checkpoint{
		LastCompletedBatch: 5,
		VectorsWritten:     287,
		PartialIndexPath:   "/data/gerard/index",
	}))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()

	loaded, err := NewCheckpointStore(backend, "gerard-index").Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, int64(5), loaded.LastCompletedBatch)
	assert.Equal(t, int64(287), loaded.VectorsWritten)
}
