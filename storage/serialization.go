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
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/stockbrief/core"
)

// fragmentFormatV1 tags the first byte of every stored fragment value.
const fragmentFormatV1 byte = 1

// MarshalStoredFragment serializes a StoredFragment to bytes.
//
// Layout: version byte, ID, Identifier, FilingKind, ChunkType, Text,
// vector length and raw float32 elements, InsertedAt and UpdatedAt as
// Unix microseconds (0 for the zero time).
func MarshalStoredFragment(f *core.StoredFragment) []byte {
	buf := make([]byte, storedFragmentSize(f))
	buf[0] = fragmentFormatV1
	n := 1
	n += ord.String.Marshal(f.ID, buf[n:])
	n += ord.String.Marshal(string(f.Identifier), buf[n:])
	n += ord.String.Marshal(f.FilingKind, buf[n:])
	n += ord.String.Marshal(f.ChunkType, buf[n:])
	n += ord.String.Marshal(f.Text, buf[n:])
	n += varint.Int.Marshal(len(f.Vector), buf[n:])
	for _, v := range f.Vector {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	n += varint.Int64.Marshal(timeToMicros(f.InsertedAt), buf[n:])
	varint.Int64.Marshal(timeToMicros(f.UpdatedAt), buf[n:])
	return buf
}

func storedFragmentSize(f *core.StoredFragment) int {
	size := 1
	size += ord.String.Size(f.ID)
	size += ord.String.Size(string(f.Identifier))
	size += ord.String.Size(f.FilingKind)
	size += ord.String.Size(f.ChunkType)
	size += ord.String.Size(f.Text)
	size += varint.Int.Size(len(f.Vector))
	for _, v := range f.Vector {
		size += raw.Float32.Size(v)
	}
	size += varint.Int64.Size(timeToMicros(f.InsertedAt))
	size += varint.Int64.Size(timeToMicros(f.UpdatedAt))
	return size
}

// UnmarshalStoredFragment deserializes a StoredFragment from bytes.
func UnmarshalStoredFragment(data []byte) (*core.StoredFragment, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, ErrTruncatedData)
	}
	if data[0] != fragmentFormatV1 {
		return nil, fmt.Errorf("%w: %w: version %d", ErrSerializationFailed, ErrUnknownFormat, data[0])
	}

	r := &reader{data: data, off: 1}
	f := &core.StoredFragment{
		ID:         r.string(),
		Identifier: core.Identifier(r.string()),
		FilingKind: r.string(),
		ChunkType:  r.string(),
		Text:       r.string(),
	}
	f.Vector = r.vector()
	f.InsertedAt = microsToTime(r.int64())
	f.UpdatedAt = microsToTime(r.int64())
	if r.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, r.err)
	}
	return f, nil
}

// reader walks a serialized value and keeps the first error.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.data[r.off:])
	r.off += n
	r.err = err
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.data[r.off:])
	r.off += n
	r.err = err
	return v
}

func (r *reader) vector() []float32 {
	if r.err != nil {
		return nil
	}
	length, n, err := varint.Int.Unmarshal(r.data[r.off:])
	r.off += n
	if err != nil {
		r.err = err
		return nil
	}
	if length < 0 || length*4 > len(r.data)-r.off {
		r.err = ErrTruncatedData
		return nil
	}
	if length == 0 {
		return nil
	}
	vec := make([]float32, length)
	for i := range vec {
		v, n, err := raw.Float32.Unmarshal(r.data[r.off:])
		if err != nil {
			r.err = err
			return nil
		}
		r.off += n
		vec[i] = v
	}
	return vec
}

func timeToMicros(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func microsToTime(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}
