// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bridge

import (
	"context"
	"fmt"
	"sync"
)

// ParameterGetter answers the host's "get named parameter by index"
// contract. fallback is returned when the parameter is not set.
type ParameterGetter func(name string, index int, fallback interface{}) (interface{}, error)

// ParameterSource is what an Executor pulls its parameters from.
type ParameterSource interface {
	GetParameter(name string, index int, fallback interface{}) (interface{}, error)
}

// Host owns the shared parameter-retrieval mechanism. At most one override
// is installed at a time: Override blocks until the previous one has been
// restored, so two concurrent calls never observe each other's parameters.
type Host struct {
	slot chan struct{} // holds a token from Override until restore

	mu     sync.RWMutex
	getter ParameterGetter
}

// NewHost creates a host whose base getter is base. A nil base answers
// every name with its fallback.
func NewHost(base ParameterGetter) *Host {
	if base == nil {
		base = FallbackGetter
	}
	return &Host{slot: make(chan struct{}, 1), getter: base}
}

// FallbackGetter returns fallback for every name.
func FallbackGetter(_ string, _ int, fallback interface{}) (interface{}, error) {
	return fallback, nil
}

// GetParameter resolves name through the currently installed getter.
func (h *Host) GetParameter(name string, index int, fallback interface{}) (interface{}, error) {
	h.mu.RLock()
	getter := h.getter
	h.mu.RUnlock()
	return getter(name, index, fallback)
}

// Getter returns the currently installed getter.
func (h *Host) Getter() ParameterGetter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.getter
}

// Override installs the getter built by wrap, which receives the getter it
// replaces for fall-through. The returned restore reinstates the original
// and releases the slot; it is safe to call more than once. Callers must
// defer it.
//
// Override waits for the slot until ctx is done, in which case nothing is
// installed and the context error is returned.
func (h *Host) Override(ctx context.Context, wrap func(original ParameterGetter) ParameterGetter) (restore func(), err error) {
	select {
	case h.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for parameter override: %w", ctx.Err())
	}
	installed := false
	defer func() {
		if !installed {
			<-h.slot
		}
	}()

	original := h.Getter()
	replacement := wrap(original)

	h.mu.Lock()
	h.getter = replacement
	h.mu.Unlock()
	installed = true

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.getter = original
			h.mu.Unlock()
			<-h.slot
		})
	}, nil
}
