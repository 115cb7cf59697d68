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


package build

import "github.com/poiesic/indexit/core"

// Batch is a contiguous run of fragments embedded in one service request.
type Batch struct {
	// Index is the zero-based position of the batch in the build
	Index int
	// Fragments are the batch members, in corpus order
	Fragments []core.Fragment
}

// Partition splits fragments into consecutive batches of batchSize, the
// last batch holding the remainder. Every fragment lands in exactly one
// batch and concatenating the batches reproduces the input order.
// An empty input yields no batches.
func Partition(fragments []core.Fragment, batchSize int) ([]Batch, error) {
	if batchSize <= 0 {
		return nil, ErrInvalidBatchSize
	}

	if len(fragments) == 0 {
		return nil, nil
	}

	batches := make([]Batch, 0, (len(fragments)+batchSize-1)/batchSize)
	for i := 0; i < len(fragments); i += batchSize {
		end := i + batchSize
		if end > len(fragments) {
			end = len(fragments)
		}

		batches = append(batches, Batch{
			Index:     len(batches),
			Fragments: fragments[i:end],
		})
	}

	return batches, nil
}
