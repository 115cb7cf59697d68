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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the domain types. Field order is part of the wire
// format and must not change between releases. Timestamps travel as Unix
// microseconds, durations as nanoseconds.

// FragmentMUS serializes Fragment values in the MUS format.
var FragmentMUS = fragmentMUS{}

type fragmentMUS struct{}

func (fragmentMUS) Size(v Fragment) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Source)
	size += varint.Int64.Size(v.Seq)
	size += varint.Int64.Size(int64(v.Start))
	size += varint.Int64.Size(int64(v.End))
	size += ord.String.Size(v.Text)
	return
}

func (fragmentMUS) Marshal(v Fragment, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Source, bs[n:])
	n += varint.Int64.Marshal(v.Seq, bs[n:])
	n += varint.Int64.Marshal(int64(v.Start), bs[n:])
	n += varint.Int64.Marshal(int64(v.End), bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return
}

func (fragmentMUS) Unmarshal(bs []byte) (v Fragment, n int, err error) {
	var (
		n1  int
		id  uint64
		off int64
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.Id = ID(id)
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Seq, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	off, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Start = time.Duration(off)
	off, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.End = time.Duration(off)
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

// CheckpointMUS serializes Checkpoint values in the MUS format.
var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (checkpointMUS) Size(v Checkpoint) (size int) {
	size = varint.Int64.Size(v.LastCompletedBatch)
	size += varint.Int64.Size(v.VectorsWritten)
	size += ord.String.Size(v.PartialIndexPath)
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	return
}

func (checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = varint.Int64.Marshal(v.LastCompletedBatch, bs)
	n += varint.Int64.Marshal(v.VectorsWritten, bs[n:])
	n += ord.String.Marshal(v.PartialIndexPath, bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return
}

func (checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var (
		n1    int
		micro int64
	)
	v.LastCompletedBatch, n, err = varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v.VectorsWritten, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.PartialIndexPath, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	micro, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt = time.UnixMicro(micro).UTC()
	return
}
