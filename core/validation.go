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

import (
	"fmt"
	"time"
)

// ValidateFragment validates a Fragment according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - Seq must not be negative
//   - End must not precede Start
//
// NOT validated:
//   - Source (synthetic fragments have no file of origin)
//   - Start/End being zero (plain text carries no cue offsets)
//   - ID (0 is a legal hash value)
func ValidateFragment(fragment *Fragment) error {
	if fragment == nil {
		return fmt.Errorf("%w: fragment is nil", ErrInvalidFragment)
	}

	if fragment.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrEmptyText)
	}

	if fragment.Seq < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrNegativeSequence)
	}

	if fragment.End < fragment.Start {
		return fmt.Errorf("%w: %w", ErrInvalidFragment, ErrInvalidTimeRange)
	}

	return nil
}

// ValidateCheckpoint validates a Checkpoint according to domain rules.
//
// Validation rules:
//   - LastCompletedBatch must be -1 or greater
//   - VectorsWritten must not be negative
//   - PartialIndexPath must not be empty
//   - UpdatedAt must not be in the future
//
// Loaders reject checkpoints that fail these rules instead of silently
// defaulting, so a malformed record can never steer a resume.
func ValidateCheckpoint(checkpoint *Checkpoint) error {
	if checkpoint == nil {
		return fmt.Errorf("%w: checkpoint is nil", ErrInvalidCheckpoint)
	}

	if checkpoint.LastCompletedBatch < -1 {
		return fmt.Errorf("%w: %w", ErrInvalidCheckpoint, ErrInvalidBatchIndex)
	}

	if checkpoint.VectorsWritten < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCheckpoint, ErrNegativeVectorCount)
	}

	if checkpoint.PartialIndexPath == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCheckpoint, ErrEmptyIndexPath)
	}

	if !IsValidTimestamp(checkpoint.UpdatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidCheckpoint, ErrInvalidTimestamp)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
