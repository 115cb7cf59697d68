// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/storage"
)

// CheckpointStore implements storage.CheckpointStore for BadgerDB.
// Each store is scoped to one job name so several indexes can share a
// backend without clobbering each other's progress.
type CheckpointStore struct {
	backend *Backend
	job     string
}

var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// NewCheckpointStore creates a checkpoint store for the named job.
func NewCheckpointStore(backend *Backend, job string) *CheckpointStore {
	return &CheckpointStore{
		backend: backend,
		job:     job,
	}
}

// Save persists the checkpoint, replacing any previous one for the job.
// The write becomes visible only when the transaction commits, so a crash
// mid-save leaves the previous record intact.
func (s *CheckpointStore) Save(ctx context.Context, checkpoint *core.Checkpoint) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		checkpoint.UpdatedAt = time.Now().UTC()
		key := makeCheckpointKey(s.job)
		value := storage.MarshalCheckpoint(checkpoint)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Load retrieves the job's checkpoint.
// Returns nil, nil if no checkpoint exists. A record that fails to decode
// or validate is an error, never a silently defaulted value.
func (s *CheckpointStore) Load(ctx context.Context) (*core.Checkpoint, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var checkpoint *core.Checkpoint
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCheckpointKey(s.job)
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			checkpoint, unmarshalErr = storage.UnmarshalCheckpoint(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, nil
	}

	if err := core.ValidateCheckpoint(checkpoint); err != nil {
		return nil, err
	}
	return checkpoint, nil
}

// Clear removes the job's checkpoint. Clearing an absent checkpoint is a
// no-op.
func (s *CheckpointStore) Clear(ctx context.Context) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCheckpointKey(s.job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
