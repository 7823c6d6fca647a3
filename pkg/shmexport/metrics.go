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

import "github.com/prometheus/client_golang/prometheus"

var (
	publishTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shm_export_publishes_total",
		Help: "Total number of snapshots published to the export segment.",
	})
	acquireFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shm_export_acquire_failures_total",
		Help: "Total number of failed attempts to create or attach the export segment.",
	})
	tornReadTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shm_export_torn_reads_total",
		Help: "Total number of reader-observed bookend mismatches.",
	})
	lastTickGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shm_export_last_tick",
		Help: "Tick counter value of the most recently published snapshot.",
	})
)

func init() {
	prometheus.MustRegister(publishTotal, acquireFailures, tornReadTotal, lastTickGauge)
}
