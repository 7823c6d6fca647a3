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
	"sync/atomic"
	"unsafe"

	"github.com/gnssd/shm-export/pkg/fix"
)

// Envelope memory image:
//
//	bookend1 | pad to 8 | payload (fix.Snapshot) | pad to 8 | bookend2
//
// The writer stores bookend2 first and bookend1 last; a reader that copies
// in normal order (bookend1, payload, bookend2) and overlaps a write sees
// mismatched bookends instead of a false match. Bookends are accessed with
// atomic loads and stores, which carry the acquire/release ordering the
// protocol needs.
const (
	bookend1Offset = 0
	payloadOffset  = 8
	payloadSize    = int(unsafe.Sizeof(fix.Snapshot{}))
	bookend2Offset = payloadOffset + (payloadSize+7)&^7

	// EnvelopeSize is the exact segment size. Producer and reader builds
	// must agree on it; a stale segment from a differently-sized build is
	// rejected at attach time.
	EnvelopeSize = bookend2Offset + 8
)

// envelope is a typed view over a mapped segment.
type envelope struct {
	mem []byte
}

func newEnvelope(mem []byte) envelope {
	return envelope{mem: mem}
}

func (e envelope) bookend1() *uint32 {
	return (*uint32)(unsafe.Pointer(&e.mem[bookend1Offset]))
}

func (e envelope) bookend2() *uint32 {
	return (*uint32)(unsafe.Pointer(&e.mem[bookend2Offset]))
}

func (e envelope) payload() *fix.Snapshot {
	return (*fix.Snapshot)(unsafe.Pointer(&e.mem[payloadOffset]))
}

func (e envelope) loadBookend1() uint32 {
	return atomic.LoadUint32(e.bookend1())
}

func (e envelope) loadBookend2() uint32 {
	return atomic.LoadUint32(e.bookend2())
}

func (e envelope) storeBookend1(t uint32) {
	atomic.StoreUint32(e.bookend1(), t)
}

func (e envelope) storeBookend2(t uint32) {
	atomic.StoreUint32(e.bookend2(), t)
}
