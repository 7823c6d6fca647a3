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
	"strconv"
	"sync"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Process-wide exporter registry. A process owns at most one segment per
// key; two subsystems asking for the same key share one Exporter, and the
// segment is released when the last one puts it back.
var (
	registryMu sync.Mutex
	registry   = cmap.New[*registryEntry]()
)

type registryEntry struct {
	refs int
	exp  *Exporter
}

func registryKey(key int) string {
	return strconv.Itoa(key)
}

// Get returns the shared exporter for conf.Key, acquiring the segment on
// first use. A nil conf resolves the key from the environment.
func Get(ctx context.Context, conf *Config) (*Exporter, error) {
	if conf == nil {
		conf = DefaultConfig()
	}
	k := registryKey(conf.Key)

	registryMu.Lock()
	defer registryMu.Unlock()

	if ent, ok := registry.Get(k); ok {
		ent.refs++
		return ent.exp, nil
	}
	exp := NewExporter(conf)
	if err := exp.Acquire(ctx); err != nil {
		return nil, err
	}
	registry.Set(k, &registryEntry{refs: 1, exp: exp})
	return exp, nil
}

// Put drops one reference. The last Put releases the segment.
func Put(exp *Exporter) {
	if exp == nil {
		return
	}
	k := registryKey(exp.conf.Key)

	registryMu.Lock()
	defer registryMu.Unlock()

	ent, ok := registry.Get(k)
	if !ok || ent.exp != exp {
		return
	}
	ent.refs--
	if ent.refs <= 0 {
		registry.Remove(k)
		exp.Release()
	}
}
