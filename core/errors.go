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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidFragment indicates a Fragment failed validation.
	ErrInvalidFragment = errors.New("invalid fragment")

	// ErrInvalidCheckpoint indicates a Checkpoint failed validation.
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrEmptyText indicates the fragment Text field is empty.
	ErrEmptyText = errors.New("fragment text cannot be empty")

	// ErrNegativeSequence indicates a negative fragment sequence number.
	ErrNegativeSequence = errors.New("fragment sequence cannot be negative")

	// ErrInvalidTimeRange indicates the fragment end offset precedes its start.
	ErrInvalidTimeRange = errors.New("fragment end precedes start")

	// ErrInvalidBatchIndex indicates a checkpoint batch index below -1.
	ErrInvalidBatchIndex = errors.New("last completed batch cannot be below -1")

	// ErrNegativeVectorCount indicates a negative checkpoint vector count.
	ErrNegativeVectorCount = errors.New("vectors written cannot be negative")

	// ErrEmptyIndexPath indicates the checkpoint partial index path is empty.
	ErrEmptyIndexPath = errors.New("partial index path cannot be empty")
)

// Build pipeline errors
var (
	// ErrTransient marks a failure worth retrying, such as a rate limit
	// response or a dropped connection.
	ErrTransient = errors.New("transient failure")

	// ErrRetriesExhausted indicates an operation kept failing transiently
	// until the retry budget ran out.
	ErrRetriesExhausted = errors.New("retries exhausted")

	// ErrNoCheckpoint indicates a resume was requested but no checkpoint exists.
	ErrNoCheckpoint = errors.New("no checkpoint found")

	// ErrCheckpointMismatch indicates a checkpoint disagrees with the partial
	// index it points at.
	ErrCheckpointMismatch = errors.New("checkpoint does not match partial index")

	// ErrVerificationFailed indicates the finished index failed its reload probe.
	ErrVerificationFailed = errors.New("index verification failed")
)
