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

import "time"

// Config holds configuration for an index build.
type Config struct {
	// BatchSize is the number of fragments embedded per service request
	BatchSize int

	// RequestsPerWindow caps embedding requests inside any trailing Window
	RequestsPerWindow int

	// Window is the rate-limit measurement window
	Window time.Duration

	// CheckpointEvery is the number of completed batches between periodic
	// index saves and checkpoint writes
	CheckpointEvery int

	// MaxRetries is the maximum number of retry attempts after a transient
	// embedding failure (MaxRetries+1 attempts total)
	MaxRetries int

	// BaseBackoff is the delay before the first retry; it doubles per attempt
	BaseBackoff time.Duration

	// MaxBackoff caps the growth of the retry delay
	MaxBackoff time.Duration
}

// DefaultConfig returns a Config with sensible defaults: batches of 100
// under a 60-requests-per-minute quota, a checkpoint every 5 batches, and
// up to 3 retries backing off from 1s toward a 30s cap.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:         100,
		RequestsPerWindow: 60,
		Window:            time.Minute,
		CheckpointEvery:   5,
		MaxRetries:        3,
		BaseBackoff:       1 * time.Second,
		MaxBackoff:        30 * time.Second,
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.RequestsPerWindow <= 0 {
		return ErrInvalidRequestsPerWindow
	}
	if c.Window <= 0 {
		return ErrInvalidWindow
	}
	if c.CheckpointEvery <= 0 {
		return ErrInvalidCheckpointEvery
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.BaseBackoff <= 0 || c.MaxBackoff <= 0 || c.MaxBackoff < c.BaseBackoff {
		return ErrInvalidBackoff
	}
	return nil
}
