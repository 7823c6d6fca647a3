/*
 * Copyright 2026 GNSSD Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shmexport

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gnssd/shm-export/internal/seg"
	"github.com/gnssd/shm-export/pkg/fix"
)

// tornReadBackoff is the pause between validation retries. A publish is a
// few microseconds of memory writes, so a short constant backoff wins the
// race quickly without spinning hot.
const tornReadBackoff = 50 * time.Microsecond

// DefaultFetchRetries bounds FetchRetry and Poll before they report the
// segment as transiently unavailable.
const DefaultFetchRetries = 16

// Reader attaches to a producer's export segment and copies validated
// snapshots out of it. One Reader serves one goroutine; polling interval
// and retry policy are the caller's.
type Reader struct {
	seg      *seg.Segment
	env      envelope
	lastTick uint32
	hasLast  bool
}

// AttachReader attaches to the existing segment under key. It fails, rather
// than creates, when no producer has acquired the segment yet.
func AttachReader(key int) (*Reader, error) {
	s, err := seg.Attach(key, EnvelopeSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	internalLogger.debugf("shm reader attached, key %#x, %d bytes", key, s.Size())
	return &Reader{seg: s, env: newEnvelope(s.Mem)}, nil
}

// Fetch copies one snapshot out of the segment and validates it: read
// bookend1, copy the payload, read bookend2, accept iff they match. On
// mismatch it returns ErrTornRead and the caller retries; a torn read is
// expected behavior, not a failure of the channel.
func (r *Reader) Fetch() (fix.Snapshot, uint32, error) {
	b1 := r.env.loadBookend1()
	snap := *r.env.payload()
	b2 := r.env.loadBookend2()
	if b1 != b2 {
		tornReadTotal.Inc()
		return fix.Snapshot{}, 0, ErrTornRead
	}
	r.lastTick = b1
	r.hasLast = true
	return snap, b1, nil
}

// FetchRetry is Fetch with a bounded retry loop. Past maxRetries it reports
// ErrUnavailable, the transient give-up condition.
func (r *Reader) FetchRetry(maxRetries uint64) (fix.Snapshot, uint32, error) {
	var snap fix.Snapshot
	var tick uint32
	op := func() error {
		s, t, err := r.Fetch()
		if err != nil {
			return err
		}
		snap, tick = s, t
		return nil
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(tornReadBackoff), maxRetries)
	if err := backoff.Retry(op, policy); err != nil {
		return fix.Snapshot{}, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return snap, tick, nil
}

// Poll fetches one validated snapshot and reports whether it is new since
// the last accepted fetch. An unchanged tick means no publish happened in
// between, so fresh is false and the payload is the one already seen.
func (r *Reader) Poll(maxRetries uint64) (fix.Snapshot, bool, error) {
	prev, had := r.lastTick, r.hasLast
	snap, tick, err := r.FetchRetry(maxRetries)
	if err != nil {
		return fix.Snapshot{}, false, err
	}
	return snap, !had || tick != prev, nil
}

// LastTick returns the tick of the last accepted fetch, if any.
func (r *Reader) LastTick() (uint32, bool) {
	return r.lastTick, r.hasLast
}

// Close drops the reader's attachment. Best-effort.
func (r *Reader) Close() {
	if r.seg == nil {
		return
	}
	if err := r.seg.Detach(); err != nil {
		internalLogger.warnf("shm reader detach: %v", err)
	}
	r.seg = nil
	r.env = envelope{}
}
