/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package fakeapi

import (
	"net/http"
	"sync"
	"time"
)

// Fault makes matching requests fail with a fixed status.
type Fault struct {
	StatusCode int
	Body       string

	// Count is how many consecutive matching requests fail, a negative
	// count fails every request until the fault is removed.
	Count int
}

// FaultRegistry manages injected faults keyed by method and path.
type FaultRegistry struct {
	mu     sync.Mutex
	faults map[string]*Fault
}

func NewFaultRegistry() *FaultRegistry {
	return &FaultRegistry{
		faults: make(map[string]*Fault),
	}
}

func faultKey(method, path string) string {
	return method + " " + path
}

// Inject registers a fault for requests with the given method and path.
func (fr *FaultRegistry) Inject(method, path string, fault Fault) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if fault.StatusCode == 0 {
		fault.StatusCode = http.StatusInternalServerError
	}

	fr.faults[faultKey(method, path)] = &fault
}

// Remove deletes a fault, reporting whether one existed.
func (fr *FaultRegistry) Remove(method, path string) bool {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	key := faultKey(method, path)

	_, existed := fr.faults[key]
	delete(fr.faults, key)

	return existed
}

// take consumes one failure of the fault matching the request, if any.
func (fr *FaultRegistry) take(method, path string) (Fault, bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	key := faultKey(method, path)

	f, ok := fr.faults[key]
	if !ok {
		return Fault{}, false
	}

	out := *f

	if f.Count > 0 {
		f.Count--
		if f.Count == 0 {
			delete(fr.faults, key)
		}
	}

	return out, true
}

func (fr *FaultRegistry) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	fr.faults = make(map[string]*Fault)
}

// RequestLogEntry captures an incoming request for inspection by tests.
type RequestLogEntry struct {
	Timestamp     time.Time
	Method        string
	Path          string
	Authorization string
	StatusCode    int
}

// RequestLog is a bounded, thread-safe record of recent requests.
type RequestLog struct {
	mu      sync.RWMutex
	entries []RequestLogEntry
	maxSize int
}

func NewRequestLog(maxSize int) *RequestLog {
	return &RequestLog{
		entries: make([]RequestLogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an entry, evicting the oldest if at capacity.
func (rl *RequestLog) Add(entry RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if len(rl.entries) >= rl.maxSize {
		rl.entries = rl.entries[1:]
	}

	rl.entries = append(rl.entries, entry)
}

// Entries returns a copy of all log entries.
func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	out := make([]RequestLogEntry, len(rl.entries))
	copy(out, rl.entries)

	return out
}

// Count returns how many logged requests match method and path.
func (rl *RequestLog) Count(method, path string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	n := 0

	for _, e := range rl.entries {
		if e.Method == method && e.Path == path {
			n++
		}
	}

	return n
}

func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.entries = rl.entries[:0]
}
