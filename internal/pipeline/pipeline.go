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

// Package pipeline hands computed snapshots from the fix-computation side
// to the export publisher, one publish per update cycle. The export channel
// has latest-value semantics, so a drain cycle that finds several queued
// snapshots publishes only the newest.
package pipeline

import (
	queuepkg "github.com/Workiva/go-datastructures/queue"

	"github.com/gnssd/shm-export/pkg/fix"
)

// Publisher consumes one snapshot per cycle. *shmexport.Exporter satisfies
// it.
type Publisher interface {
	Publish(*fix.Snapshot)
}

// Pipeline is a disposable hand-off queue between the producer's update
// loop and the publisher.
type Pipeline struct {
	q *queuepkg.Queue
}

// New creates a pipeline. hint sizes the backing queue.
func New(hint int64) *Pipeline {
	return &Pipeline{q: queuepkg.New(hint)}
}

// Offer queues one computed snapshot for export. Fails only after Close.
func (p *Pipeline) Offer(s *fix.Snapshot) error {
	return p.q.Put(s)
}

// Run drains the pipeline into pub until Close. Each drain cycle collapses
// a backlog to its newest snapshot; stale intermediates are dropped, never
// published.
func (p *Pipeline) Run(pub Publisher) {
	for {
		items, err := p.q.Get(1)
		if err != nil {
			return // disposed
		}
		snap := items[0].(*fix.Snapshot)
		for p.q.Len() > 0 {
			more, err := p.q.Get(1)
			if err != nil {
				return
			}
			snap = more[0].(*fix.Snapshot)
		}
		pub.Publish(snap)
	}
}

// Close stops Run and rejects further Offers. It does not touch the
// publisher; segment lifecycle stays with the exporter's owner.
func (p *Pipeline) Close() {
	p.q.Dispose()
}
