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
	"os"
	"strconv"
)

// DefaultKey identifies the export segment when no override is set. The
// value spells "GPSD" in ASCII; producer and readers must agree on it.
const DefaultKey = 0x47505344

// KeyEnv overrides the segment key. Decimal, hex (0x...) and octal (0...)
// literal forms are accepted.
const KeyEnv = "GNSSD_SHM_KEY"

// ResolveKey returns the segment key from the environment override, else
// DefaultKey. A malformed override is logged and ignored.
func ResolveKey() int {
	s := os.Getenv(KeyEnv)
	if s == "" {
		return DefaultKey
	}
	k, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		internalLogger.warnf("ignoring malformed %s=%q: %v", KeyEnv, s, err)
		return DefaultKey
	}
	return int(k)
}
