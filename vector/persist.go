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


package vector

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/indexit/core"
)

// On-disk layout. Both artifacts carry a magic plus format version so stale
// or foreign files are rejected on load. All integers are little-endian.
//
//	<base>.vec:  "IVEC" version dimension count, then count*dimension float32
//	<base>.meta: "IMET" version count, then count MUS fragment records
const (
	vecExt  = ".vec"
	metaExt = ".meta"

	vecMagic  = "IVEC"
	metaMagic = "IMET"

	formatVersion = 1

	vecHeaderSize  = 16
	metaHeaderSize = 12
)

// Save writes both index artifacts under basePath. Each file is staged to a
// temporary in the same directory, synced, then renamed over the target, so
// a crash mid-save never leaves a torn file. The vector artifact is renamed
// before the metadata artifact; Load cross-checks the pair and rejects a
// mismatch.
func (x *Index) Save(basePath string) error {
	if basePath == "" {
		return ErrInvalidBasePath
	}

	vecData, metaData := x.encode()

	dir := filepath.Dir(basePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	vecTmp, err := stageTemp(dir, vecData)
	if err != nil {
		return fmt.Errorf("stage vector artifact: %w", err)
	}
	metaTmp, err := stageTemp(dir, metaData)
	if err != nil {
		os.Remove(vecTmp)
		return fmt.Errorf("stage metadata artifact: %w", err)
	}

	if err := os.Rename(vecTmp, basePath+vecExt); err != nil {
		os.Remove(vecTmp)
		os.Remove(metaTmp)
		return fmt.Errorf("replace vector artifact: %w", err)
	}
	if err := os.Rename(metaTmp, basePath+metaExt); err != nil {
		os.Remove(metaTmp)
		return fmt.Errorf("replace metadata artifact: %w", err)
	}

	syncDir(dir)
	return nil
}

// encode snapshots the index into its two artifact encodings.
func (x *Index) encode() (vecData, metaData []byte) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	vecData = make([]byte, vecHeaderSize+len(x.vectors)*x.dim*4)
	copy(vecData, vecMagic)
	binary.LittleEndian.PutUint32(vecData[4:], formatVersion)
	binary.LittleEndian.PutUint32(vecData[8:], uint32(x.dim))
	binary.LittleEndian.PutUint32(vecData[12:], uint32(len(x.vectors)))
	off := vecHeaderSize
	for _, vec := range x.vectors {
		for _, v := range vec {
			binary.LittleEndian.PutUint32(vecData[off:], math.Float32bits(v))
			off += 4
		}
	}

	metaSize := metaHeaderSize
	for i := range x.frags {
		metaSize += core.FragmentMUS.Size(x.frags[i])
	}
	metaData = make([]byte, metaSize)
	copy(metaData, metaMagic)
	binary.LittleEndian.PutUint32(metaData[4:], formatVersion)
	binary.LittleEndian.PutUint32(metaData[8:], uint32(len(x.frags)))
	moff := metaHeaderSize
	for i := range x.frags {
		moff += core.FragmentMUS.Marshal(x.frags[i], metaData[moff:])
	}
	return vecData, metaData
}

// Load reads both artifacts under basePath and rebuilds the index. A lone
// artifact or any disagreement between the pair is an error.
func Load(basePath string) (*Index, error) {
	if basePath == "" {
		return nil, ErrInvalidBasePath
	}

	vecPath := basePath + vecExt
	metaPath := basePath + metaExt

	vecData, vecErr := os.ReadFile(vecPath)
	metaData, metaErr := os.ReadFile(metaPath)
	switch {
	case vecErr == nil && metaErr == nil:
	case os.IsNotExist(vecErr) && os.IsNotExist(metaErr):
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, basePath)
	case os.IsNotExist(vecErr):
		return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, vecPath)
	case os.IsNotExist(metaErr):
		return nil, fmt.Errorf("%w: %s", ErrMissingArtifact, metaPath)
	case vecErr != nil:
		return nil, vecErr
	default:
		return nil, metaErr
	}

	dim, vectors, err := decodeVectors(vecData)
	if err != nil {
		return nil, err
	}
	frags, err := decodeFragments(metaData)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(frags) {
		return nil, fmt.Errorf("%w: %d vectors but %d fragments", ErrCorruptIndex, len(vectors), len(frags))
	}

	return &Index{
		dim:     dim,
		vectors: vectors,
		frags:   frags,
	}, nil
}

// Exists reports whether a complete artifact pair is present at basePath.
// A lone artifact is an error rather than false.
func Exists(basePath string) (bool, error) {
	if basePath == "" {
		return false, ErrInvalidBasePath
	}

	_, vecErr := os.Stat(basePath + vecExt)
	_, metaErr := os.Stat(basePath + metaExt)
	switch {
	case vecErr == nil && metaErr == nil:
		return true, nil
	case os.IsNotExist(vecErr) && os.IsNotExist(metaErr):
		return false, nil
	case os.IsNotExist(vecErr):
		return false, fmt.Errorf("%w: %s", ErrMissingArtifact, basePath+vecExt)
	case os.IsNotExist(metaErr):
		return false, fmt.Errorf("%w: %s", ErrMissingArtifact, basePath+metaExt)
	case vecErr != nil:
		return false, vecErr
	default:
		return false, metaErr
	}
}

// Backup renames the artifact pair aside with a timestamp suffix and
// returns the new base path.
func Backup(basePath string) (string, error) {
	if basePath == "" {
		return "", ErrInvalidBasePath
	}

	backupBase := fmt.Sprintf("%s.backup-%s", basePath, time.Now().Format("20060102-150405"))
	if err := os.Rename(basePath+vecExt, backupBase+vecExt); err != nil {
		return "", fmt.Errorf("backup vector artifact: %w", err)
	}
	if err := os.Rename(basePath+metaExt, backupBase+metaExt); err != nil {
		return "", fmt.Errorf("backup metadata artifact: %w", err)
	}
	return backupBase, nil
}

func decodeVectors(data []byte) (int, [][]float32, error) {
	if len(data) < vecHeaderSize {
		return 0, nil, fmt.Errorf("%w: vector artifact truncated", ErrCorruptIndex)
	}
	if string(data[:4]) != vecMagic {
		return 0, nil, fmt.Errorf("%w: bad vector artifact magic", ErrCorruptIndex)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != formatVersion {
		return 0, nil, fmt.Errorf("%w: unsupported vector format version %d", ErrCorruptIndex, version)
	}

	dim := int(binary.LittleEndian.Uint32(data[8:]))
	count := int(binary.LittleEndian.Uint32(data[12:]))
	want := vecHeaderSize + dim*count*4
	if len(data) != want {
		return 0, nil, fmt.Errorf("%w: vector artifact is %d bytes, want %d", ErrCorruptIndex, len(data), want)
	}

	vectors := make([][]float32, count)
	off := vecHeaderSize
	for i := range vectors {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
		}
		vectors[i] = vec
	}
	return dim, vectors, nil
}

func decodeFragments(data []byte) ([]core.Fragment, error) {
	if len(data) < metaHeaderSize {
		return nil, fmt.Errorf("%w: metadata artifact truncated", ErrCorruptIndex)
	}
	if string(data[:4]) != metaMagic {
		return nil, fmt.Errorf("%w: bad metadata artifact magic", ErrCorruptIndex)
	}
	if version := binary.LittleEndian.Uint32(data[4:]); version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported metadata format version %d", ErrCorruptIndex, version)
	}

	count := int(binary.LittleEndian.Uint32(data[8:]))
	frags := make([]core.Fragment, count)
	off := metaHeaderSize
	for i := range frags {
		frag, n, err := core.FragmentMUS.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %w", ErrCorruptIndex, i, err)
		}
		frags[i] = frag
		off += n
	}
	if off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes in metadata artifact", ErrCorruptIndex, len(data)-off)
	}
	return frags, nil
}

// stageTemp writes data to a temporary file in dir and syncs it.
func stageTemp(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	os.Chmod(tmpPath, 0644)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}

// syncDir best-effort fsync of the directory to persist the renames.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	f.Sync()
}
