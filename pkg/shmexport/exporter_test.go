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
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/gnssd/shm-export/internal/seg"
	"github.com/gnssd/shm-export/pkg/fix"
)

var keySlot uint32

// testKey derives a fresh per-process key for each test so runs never
// collide with each other or with a live producer's default key.
func testKey() int {
	slot := atomic.AddUint32(&keySlot, 1)
	return 0x4E000000 | (os.Getpid()&0xFFF)<<12 | int(slot&0xFFF)
}

func testSnapshot() *fix.Snapshot {
	s := &fix.Snapshot{
		Time:              1724572800.25,
		Latitude:          37.0,
		Longitude:         -122.016,
		AltHAE:            40.5,
		AltMSL:            8.2,
		Speed:             1.25,
		Track:             271.5,
		Climb:             -0.1,
		Mode:              fix.Mode3D,
		Status:            fix.StatusFix,
		Origin:            fix.OriginLive,
		SatellitesVisible: 10,
		SatellitesUsed:    7,
	}
	s.Dop.HDOP = 0.9
	s.Dop.PDOP = 1.7
	s.Satellites[0] = fix.Satellite{PRN: 5, Used: 1, Elevation: 45, Azimuth: 120, SNR: 38}
	s.Satellites[1] = fix.Satellite{PRN: 13, Used: 0, Elevation: 12, Azimuth: 310, SNR: 22}
	return s
}

// testStaleSegment plants an undersized segment under key, simulating a
// leftover from an incompatible build. The returned func cleans it up.
func testStaleSegment(key int) (func(), error) {
	stale, err := seg.Create(key, 64)
	if err != nil {
		return nil, err
	}
	return func() {
		_ = stale.MarkRemove()
		_ = stale.Detach()
	}, nil
}

type ExporterTestSuite struct {
	suite.Suite
}

func (s *ExporterTestSuite) TestAcquireReleaseLifecycle() {
	exp := NewExporter(&Config{Key: testKey()})

	// release before any acquire is a safe no-op
	exp.Release()
	s.Require().False(exp.Enabled())

	s.Require().NoError(exp.Acquire(context.Background()))
	s.Require().True(exp.Enabled())

	// acquire is idempotent while attached
	s.Require().NoError(exp.Acquire(context.Background()))

	exp.Release()
	s.Require().False(exp.Enabled())
	exp.Release() // and release stays idempotent
}

func (s *ExporterTestSuite) TestPublishDisabledIsNoop() {
	exp := NewExporter(&Config{Key: testKey()})
	exp.Publish(testSnapshot())
	s.Require().Equal(uint32(0), exp.Tick())
	s.Require().False(exp.Enabled())
}

func (s *ExporterTestSuite) TestRoundTrip() {
	key := testKey()
	exp := NewExporter(&Config{Key: key})
	s.Require().NoError(exp.Acquire(context.Background()))
	defer exp.Release()

	in := testSnapshot()
	exp.Publish(in)

	r, err := AttachReader(key)
	s.Require().NoError(err)
	defer r.Close()

	got, tick, err := r.Fetch()
	s.Require().NoError(err)
	s.Require().Equal(uint32(1), tick)

	// byte-identical except the overridden transport-origin field
	want := *in
	want.Origin = fix.OriginSharedMemory
	s.Require().Equal(want, got)
	s.Require().Equal(fix.OriginLive, in.Origin, "caller's snapshot must not be mutated")
}

func (s *ExporterTestSuite) TestAcquireStaleMismatchedSegment() {
	key := testKey()

	// a leftover segment from an incompatible build
	stale, err := seg.Create(key, 64)
	s.Require().NoError(err)
	defer func() {
		_ = stale.MarkRemove()
		_ = stale.Detach()
	}()

	exp := NewExporter(&Config{Key: key})
	err = exp.Acquire(context.Background())
	s.Require().Error(err)
	s.Require().True(errors.Is(err, ErrUnavailable))
	s.Require().False(exp.Enabled())

	// the channel is down, the process is not
	exp.Publish(testSnapshot())
	s.Require().Equal(uint32(0), exp.Tick())
	exp.Release()
}

func (s *ExporterTestSuite) TestReleaseThenAcquireIsFreshGeneration() {
	key := testKey()
	exp := NewExporter(&Config{Key: key})
	s.Require().NoError(exp.Acquire(context.Background()))
	exp.Publish(testSnapshot())
	exp.Release()

	exp2 := NewExporter(&Config{Key: key})
	s.Require().NoError(exp2.Acquire(context.Background()))
	defer exp2.Release()

	// a reader attaching only after the new acquire must not observe the
	// prior generation's content
	r, err := AttachReader(key)
	s.Require().NoError(err)
	defer r.Close()

	got, tick, err := r.Fetch()
	s.Require().NoError(err)
	s.Require().Equal(uint32(0), tick)
	s.Require().Equal(fix.Snapshot{}, got)
}

func (s *ExporterTestSuite) TestAcquireWithTelemetry() {
	exp := NewExporter(&Config{
		Key:    testKey(),
		Meter:  metricnoop.NewMeterProvider().Meter("shm-export-test"),
		Tracer: tracenoop.NewTracerProvider().Tracer("shm-export-test"),
	})
	s.Require().NoError(exp.Acquire(context.Background()))
	defer exp.Release()

	exp.Publish(testSnapshot())
	s.Require().Equal(uint32(1), exp.Tick())
}

func TestExporterTestSuite(t *testing.T) {
	suite.Run(t, new(ExporterTestSuite))
}
