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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	_ = c.Write(m)
	return m.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	m := &dto.Metric{}
	_ = g.Write(m)
	return m.GetGauge().GetValue()
}

func TestPublishMetrics(t *testing.T) {
	exp, _ := testExporter(t)

	before := counterValue(publishTotal)
	exp.Publish(testSnapshot())
	exp.Publish(testSnapshot())

	require.Equal(t, before+2, counterValue(publishTotal))
	require.Equal(t, float64(exp.Tick()), gaugeValue(lastTickGauge))
}

func TestAcquireFailureMetric(t *testing.T) {
	key := testKey()
	stale, err := testStaleSegment(key)
	require.NoError(t, err)
	defer stale()

	before := counterValue(acquireFailures)
	exp := NewExporter(&Config{Key: key})
	require.Error(t, exp.Acquire(context.Background()))
	require.Equal(t, before+1, counterValue(acquireFailures))
}

func TestTornReadMetric(t *testing.T) {
	exp, key := testExporter(t)
	exp.Publish(testSnapshot())

	r := testReader(t, key)
	// fake a half-finished write
	exp.env.storeBookend2(exp.Tick() + 1)

	before := counterValue(tornReadTotal)
	_, _, err := r.Fetch()
	require.Equal(t, ErrTornRead, err)
	require.Equal(t, before+1, counterValue(tornReadTotal))

	exp.env.storeBookend2(exp.Tick()) // restore
}
