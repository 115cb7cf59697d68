package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateFragment(t *testing.T) {
	tests := []struct {
		name     string
		fragment *Fragment
		wantErr  error
	}{
		{
			name: "valid fragment",
			fragment: &Fragment{
				Id:     1,
				Source: "episode01.srt",
				Seq:    0,
				Start:  5 * time.Second,
				End:    12 * time.Second,
				Text:   "Hello world",
			},
			wantErr: nil,
		},
		{
			name: "valid fragment without cue offsets",
			fragment: &Fragment{
				Id:     1,
				Source: "notes.txt",
				Seq:    3,
				Text:   "Plain text fragment",
			},
			wantErr: nil,
		},
		{
			name: "valid fragment without source",
			fragment: &Fragment{
				Id:   1,
				Seq:  0,
				Text: "Synthetic fragment",
			},
			wantErr: nil,
		},
		{
			name: "valid fragment with ID 0",
			fragment: &Fragment{
				Id:   0,
				Seq:  0,
				Text: "Message",
			},
			wantErr: nil,
		},
		{
			name:     "nil fragment",
			fragment: nil,
			wantErr:  ErrInvalidFragment,
		},
		{
			name: "empty text",
			fragment: &Fragment{
				Id:   1,
				Seq:  0,
				Text: "",
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "negative sequence",
			fragment: &Fragment{
				Id:   1,
				Seq:  -1,
				Text: "Hello",
			},
			wantErr: ErrNegativeSequence,
		},
		{
			name: "end precedes start",
			fragment: &Fragment{
				Id:    1,
				Seq:   0,
				Start: 10 * time.Second,
				End:   5 * time.Second,
				Text:  "Hello",
			},
			wantErr: ErrInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFragment(tt.fragment)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateFragment() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateFragment() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateFragment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCheckpoint(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Minute)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name       string
		checkpoint *Checkpoint
		wantErr    error
	}{
		{
			name: "valid checkpoint",
			checkpoint: &Checkpoint{
				LastCompletedBatch: 4,
				VectorsWritten:     250,
				PartialIndexPath:   "/tmp/index",
				UpdatedAt:          validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid checkpoint before any batch",
			checkpoint: &Checkpoint{
				LastCompletedBatch: -1,
				VectorsWritten:     0,
				PartialIndexPath:   "/tmp/index",
				UpdatedAt:          validTime,
			},
			wantErr: nil,
		},
		{
			name:       "nil checkpoint",
			checkpoint: nil,
			wantErr:    ErrInvalidCheckpoint,
		},
		{
			name: "batch index below -1",
			checkpoint: &Checkpoint{
				LastCompletedBatch: -2,
				VectorsWritten:     0,
				PartialIndexPath:   "/tmp/index",
				UpdatedAt:          validTime,
			},
			wantErr: ErrInvalidBatchIndex,
		},
		{
			name: "negative vector count",
			checkpoint: &Checkpoint{
				LastCompletedBatch: 0,
				VectorsWritten:     -5,
				PartialIndexPath:   "/tmp/index",
				UpdatedAt:          validTime,
			},
			wantErr: ErrNegativeVectorCount,
		},
		{
			name: "empty index path",
			checkpoint: &Checkpoint{
				LastCompletedBatch: 0,
				VectorsWritten:     50,
				PartialIndexPath:   "",
				UpdatedAt:          validTime,
			},
			wantErr: ErrEmptyIndexPath,
		},
		{
			name: "future timestamp",
			checkpoint: &Checkpoint{
				LastCompletedBatch: 0,
				VectorsWritten:     50,
				PartialIndexPath:   "/tmp/index",
				UpdatedAt:          futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCheckpoint(tt.checkpoint)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCheckpoint() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateCheckpoint() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCheckpoint() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	tests := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{
			name: "past timestamp",
			ts:   time.Now().Add(-1 * time.Hour),
			want: true,
		},
		{
			name: "current time (approximately)",
			ts:   time.Now(),
			want: true,
		},
		{
			name: "future timestamp",
			ts:   time.Now().Add(1 * time.Hour),
			want: false,
		},
		{
			name: "zero time",
			ts:   time.Time{},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidTimestamp(tt.ts)
			if got != tt.want {
				t.Errorf("IsValidTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
