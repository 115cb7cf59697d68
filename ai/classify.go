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


package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/poiesic/indexit/core"
)

// transientMarkers are lowercase substrings of provider error messages
// that indicate a failure worth retrying: rate limiting, server-side
// overload, and flaky connectivity. Embedding clients surface these as
// opaque wrapped errors, so the message text is the signal we have.
var transientMarkers = []string{
	"429",
	"too many requests",
	"rate limit",
	"500",
	"502",
	"503",
	"504",
	"internal server error",
	"bad gateway",
	"service unavailable",
	"gateway timeout",
	"unavailable",
	"overloaded",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"broken pipe",
	"eof",
}

// Classify sorts an embedding request failure into retryable and
// permanent classes. Retryable failures come back wrapped in
// core.ErrTransient so callers can test with errors.Is; permanent
// failures (bad credentials, unknown model, malformed request) and
// context cancellation pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	// Cancellation is the caller's signal, never a provider fault.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Already classified.
	if errors.Is(err, core.ErrTransient) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", core.ErrTransient, err)
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return fmt.Errorf("%w: %w", core.ErrTransient, err)
		}
	}

	return err
}
