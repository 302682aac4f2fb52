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

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(&Request{JSONRPC: "2.0", Method: "ping"}))
	assert.ErrorContains(t, ValidateRequest(&Request{JSONRPC: "1.0", Method: "ping"}), "invalid jsonrpc version")
	assert.ErrorContains(t, ValidateRequest(&Request{JSONRPC: "2.0"}), "method is required")
}

func TestValidateToolArguments(t *testing.T) {
	tool := Tool{
		Name: "autotask_ticket_get",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id":     map[string]interface{}{"type": "number"},
				"fields": map[string]interface{}{"type": "string"},
			},
			"required": []interface{}{"id"},
		},
	}

	assert.NoError(t, ValidateToolArguments(tool, map[string]interface{}{"id": 12}))
	assert.ErrorContains(t, ValidateToolArguments(tool, nil), "id is required")
	assert.ErrorContains(t, ValidateToolArguments(tool, map[string]interface{}{"id": "twelve"}), "autotask_ticket_get")
	assert.NoError(t, ValidateToolArguments(Tool{Name: "free"}, map[string]interface{}{"x": 1}))
}
