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

// Package shmexport broadcasts the producer's latest navigation snapshot to
// any number of unsynchronized local reader processes through one shared
// memory segment, without sockets, serialization or kernel locking. A
// double-bookend tick protocol lets readers detect records they copied
// mid-write; everything else is latest-value-wins.
package shmexport

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/gnssd/shm-export/internal/seg"
	"github.com/gnssd/shm-export/pkg/fix"
)

// Config holds exporter creation parameters.
type Config struct {
	// Key identifies the shared segment. Must match the readers'.
	Key int
	// Meter, if set, adds an OTel publish counter.
	Meter metric.Meter
	// Tracer, if set, wraps Acquire in a span.
	Tracer trace.Tracer
}

// DefaultConfig resolves the key from the environment.
func DefaultConfig() *Config {
	return &Config{Key: ResolveKey()}
}

// Exporter owns at most one export segment for this process. Create it at
// start-up, call Publish once per computed update cycle, Release at
// shutdown. Acquire and Release belong to the owning goroutine; Publish
// must only ever be called from one goroutine at a time — the single-writer
// assumption is a design invariant the protocol trusts, not one the
// segment can enforce.
type Exporter struct {
	conf Config
	seg  *seg.Segment
	env  envelope
	tick uint32

	otelPublishes metric.Int64Counter

	// called between the bookend2 store and the payload copy; tests use
	// it to hold a publish mid-write.
	pausePayloadCopy func()
}

// NewExporter returns a disabled exporter. Nothing touches the OS until
// Acquire.
func NewExporter(conf *Config) *Exporter {
	if conf == nil {
		conf = DefaultConfig()
	}
	return &Exporter{conf: *conf}
}

// Acquire creates or re-attaches the export segment. Failure disables the
// export channel and is reported, never escalated: sockets and other export
// channels of the host are unaffected.
func (e *Exporter) Acquire(ctx context.Context) error {
	if e.seg != nil {
		return nil
	}
	if e.conf.Tracer != nil {
		_, span := e.conf.Tracer.Start(ctx, "shmexport.Acquire")
		defer span.End()
	}

	s, err := seg.Create(e.conf.Key, EnvelopeSize)
	if err != nil {
		acquireFailures.Inc()
		internalLogger.errorf("shm export acquire for key %#x failed: %v", e.conf.Key, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	e.seg = s
	e.env = newEnvelope(s.Mem)

	if e.conf.Meter != nil {
		e.otelPublishes, err = e.conf.Meter.Int64Counter("shm_export.publishes")
		if err != nil {
			internalLogger.warnf("otel publish counter unavailable: %v", err)
		}
	}

	internalLogger.infof("shm export attached, key %#x, %d bytes", e.conf.Key, s.Size())
	return nil
}

// Enabled reports whether the export segment is attached.
func (e *Exporter) Enabled() bool {
	return e.seg != nil
}

// Tick returns the tick of the most recent publish.
func (e *Exporter) Tick() uint32 {
	return e.tick
}

// Publish exports one snapshot. No-op while the export is disabled; it
// performs only memory writes and cannot fail.
//
// Write order is the inverse of the reader's: bookend2 first, then the
// payload with the transport-origin override, then bookend1. A reader
// overlapping the write sees mismatched bookends and retries. Tick
// wraparound is legal; the tick is an equality token only, so a false
// match across two generations exactly 2^32 publishes apart remains a
// documented theoretical hazard.
func (e *Exporter) Publish(snap *fix.Snapshot) {
	if e.seg == nil {
		return
	}
	e.tick++
	t := e.tick

	e.env.storeBookend2(t)
	if e.pausePayloadCopy != nil {
		e.pausePayloadCopy()
	}
	p := e.env.payload()
	*p = *snap
	p.Origin = fix.OriginSharedMemory
	e.env.storeBookend1(t)

	publishTotal.Inc()
	lastTickGauge.Set(float64(t))
	if e.otelPublishes != nil {
		e.otelPublishes.Add(context.Background(), 1)
	}
}

// Release marks the segment for destruction and drops this process's
// attachment. Marking first closes the window where a fresh Acquire under
// the same key could race our own teardown; the kernel keeps the content
// valid for already-attached readers until they detach. Both steps are
// best-effort: failures are logged as warnings because the process is on
// its way out. Safe to call when Acquire never succeeded, and idempotent.
func (e *Exporter) Release() {
	if e.seg == nil {
		return
	}
	if err := e.seg.MarkRemove(); err != nil {
		internalLogger.warnf("shm export mark-remove for key %#x: %v", e.conf.Key, err)
	}
	if err := e.seg.Detach(); err != nil {
		internalLogger.warnf("shm export detach for key %#x: %v", e.conf.Key, err)
	}
	e.seg = nil
	e.env = envelope{}
	internalLogger.infof("shm export released, key %#x", e.conf.Key)
}
