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

package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnssd/shm-export/pkg/fix"
)

type capturePublisher struct {
	published []fix.Snapshot
	notify    chan struct{}
}

func (c *capturePublisher) Publish(s *fix.Snapshot) {
	c.published = append(c.published, *s)
	c.notify <- struct{}{}
}

func TestRunCollapsesBacklogToLatest(t *testing.T) {
	p := New(8)
	defer p.Close()

	// Backlog queued before the drain loop starts: only the newest
	// snapshot may reach the publisher.
	for i := 1; i <= 3; i++ {
		require.NoError(t, p.Offer(&fix.Snapshot{Latitude: float64(i)}))
	}

	pub := &capturePublisher{notify: make(chan struct{}, 1)}
	go p.Run(pub)

	select {
	case <-pub.notify:
	case <-time.After(time.Second):
		t.Fatal("publisher never invoked")
	}
	require.Len(t, pub.published, 1)
	assert.Equal(t, 3.0, pub.published[0].Latitude)
}

func TestOfferAfterCloseFails(t *testing.T) {
	p := New(8)

	done := make(chan struct{})
	pub := &capturePublisher{notify: make(chan struct{}, 1)}
	go func() {
		p.Run(pub)
		close(done)
	}()

	p.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after Close")
	}
	assert.Error(t, p.Offer(&fix.Snapshot{}))
}
