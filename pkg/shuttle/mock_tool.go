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
	"context"
	"sync"
)

// MockTool is a configurable Tool for tests. It records every call and is
// safe for concurrent use.
type MockTool struct {
	MockName        string
	MockDescription string
	MockSchema      *JSONSchema
	MockExecute     func(ctx context.Context, params map[string]interface{}) (*Result, error)

	mu         sync.Mutex
	calls      int
	lastParams map[string]interface{}
}

func (m *MockTool) Name() string {
	if m.MockName == "" {
		return "mock_tool"
	}
	return m.MockName
}

func (m *MockTool) Description() string { return m.MockDescription }

func (m *MockTool) Backend() string { return "autotask" }

// InputSchema defaults to an object schema without properties.
func (m *MockTool) InputSchema() *JSONSchema {
	if m.MockSchema == nil {
		return NewObjectSchema("", map[string]*JSONSchema{}, nil)
	}
	return m.MockSchema
}

// Execute records the call and runs MockExecute, or succeeds with {"ok": true}.
func (m *MockTool) Execute(ctx context.Context, params map[string]interface{}) (*Result, error) {
	m.mu.Lock()
	m.calls++
	m.lastParams = params
	m.mu.Unlock()

	if m.MockExecute != nil {
		return m.MockExecute(ctx, params)
	}
	return &Result{Success: true, Data: map[string]interface{}{"ok": true}}, nil
}

// Calls returns how many times Execute ran.
func (m *MockTool) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastParams returns the parameters of the latest call.
func (m *MockTool) LastParams() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastParams
}

var _ Tool = (*MockTool)(nil)
