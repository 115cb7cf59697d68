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


// Package storage provides the checkpoint persistence layer for indexit.
//
// This package defines the store interface that decouples checkpoint
// durability from the build orchestration. It allows different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Consumers hold the CheckpointStore interface rather than a backend's
// concrete type, which keeps backends interchangeable:
//
//	var store storage.CheckpointStore = badger.NewCheckpointStore(backend, "my-index")
//
// Backend-internal helpers may pass concrete types among themselves; the
// interface boundary sits at the consumer.
//
// # Durability
//
// Save goes through a transaction commit, so a crash mid-save never leaves
// a half-written checkpoint observable to a later Load. Load returns either
// a fully valid record or absence; malformed records are rejected with an
// error rather than defaulted.
//
// # Thread Safety
//
// All store implementations must be thread-safe and support concurrent
// access from multiple goroutines.
//
// # Context Support
//
// All store methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
