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

import "errors"

var (
	// ErrUnavailable reports that the export segment could not be created
	// or attached, or that a bounded retry gave up. Terminal for this
	// channel only; the host process keeps running.
	ErrUnavailable = errors.New("shmexport: export segment unavailable")

	// ErrTornRead reports a reader-observed bookend mismatch. A retry
	// signal, not a hard error; it is never surfaced to the writer.
	ErrTornRead = errors.New("shmexport: torn read, bookends mismatched")
)
