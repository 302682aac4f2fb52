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

package shuttle

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "autotask_ticket_get"})

	got, ok := reg.Get("autotask_ticket_get")
	require.True(t, ok)
	assert.Equal(t, "autotask_ticket_get", got.Name())

	_, ok = reg.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_ListIsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "b"})
	reg.Register(&MockTool{MockName: "c"})
	reg.Register(&MockTool{MockName: "a"})

	assert.Equal(t, []string{"a", "b", "c"}, reg.List())

	tools := reg.ListTools()
	require.Len(t, tools, 3)
	assert.Equal(t, "a", tools[0].Name())
	assert.Equal(t, "c", tools[2].Name())
}

func TestRegistry_Replace(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "old"})

	reg.Replace([]Tool{&MockTool{MockName: "new1"}, &MockTool{MockName: "new2"}})

	assert.Equal(t, 2, reg.Count())
	_, ok := reg.Get("old")
	assert.False(t, ok)
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&MockTool{MockName: "x"})
	reg.Unregister("x")
	assert.Equal(t, 0, reg.Count())
}

func TestRegistry_Concurrent(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register(&MockTool{MockName: "tool"})
		}()
		go func() {
			defer wg.Done()
			_ = reg.List()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, reg.Count())
}
