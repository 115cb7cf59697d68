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


package storage

import (
	"fmt"

	"github.com/poiesic/indexit/core"
)

// MarshalCheckpoint encodes checkpoint into a fresh byte slice in the MUS
// wire format.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	bs := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, bs)
	return bs
}

// UnmarshalCheckpoint decodes a checkpoint. A record that does not decode
// to exactly len(data) bytes is corrupt and surfaces as an error, never as
// a defaulted value.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, n, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return &checkpoint, nil
}
