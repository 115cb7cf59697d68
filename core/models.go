package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fragment is a unit of text cut from a source document, sized for a single
// embedding request. Fragments are ordered corpus-wide by Seq, and that order
// is the order their vectors occupy in the index.
type Fragment struct {
	Id     ID
	Source string        // Relative path of the file the fragment was cut from
	Seq    int64         // Position in the corpus-wide ordering
	Start  time.Duration // Offset of the first subtitle cue; zero for plain text
	End    time.Duration // Offset past the last subtitle cue; zero for plain text
	Text   string
}

// Checkpoint records how far a build progressed so an interrupted run can
// resume instead of starting over. A checkpoint is only written after the
// batch it names has been fully persisted to the partial index.
type Checkpoint struct {
	LastCompletedBatch int64     // Index of the last fully persisted batch; -1 before any batch completes
	VectorsWritten     int64     // Number of vectors present in the partial index
	PartialIndexPath   string    // Base path of the partial index artifacts
	UpdatedAt          time.Time // When the checkpoint was written
}
