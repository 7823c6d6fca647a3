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

import "github.com/heptiolabs/healthcheck"

// Health returns a handler whose readiness tracks the export channel. A
// disabled export turns readiness red without affecting liveness — the
// host process is fine, only this channel is down.
func (e *Exporter) Health() healthcheck.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("process", func() error { return nil })
	h.AddReadinessCheck("shm-export", func() error {
		if !e.Enabled() {
			return ErrUnavailable
		}
		return nil
	})
	return h
}
