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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"string", `"abc-1"`, "abc-1"},
		{"number", `42`, "42"},
		{"null", `null`, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id RequestID
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &id))
			assert.Equal(t, tt.want, id.String())

			out, err := json.Marshal(&id)
			require.NoError(t, err)
			assert.JSONEq(t, tt.raw, string(out))
		})
	}
}

func TestRequestID_Invalid(t *testing.T) {
	var id RequestID
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &id))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &id))
}

func TestRequest_Notification(t *testing.T) {
	var req Request
	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`), &req))
	assert.True(t, req.IsNotification())

	require.NoError(t, json.Unmarshal([]byte(`{"jsonrpc":"2.0","id":7,"method":"ping"}`), &req))
	assert.False(t, req.IsNotification())
	assert.Equal(t, "7", req.ID.String())
}

func TestNotification_OmitsID(t *testing.T) {
	out, err := json.Marshal(NewNotification(NotificationToolsListChanged, nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","method":"notifications/tools/list_changed"}`, string(out))
}

func TestError(t *testing.T) {
	e := NewError(InvalidParams, "tool name is required", map[string]string{"field": "name"})
	assert.Equal(t, `jsonrpc error -32602: tool name is required (data: {"field":"name"})`, e.Error())
	assert.Equal(t, "jsonrpc error -32601: nope", NewError(MethodNotFound, "nope", nil).Error())

	var err error = e
	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, InvalidParams, rpcErr.Code)
}

func TestNegotiateVersion(t *testing.T) {
	assert.Equal(t, "2024-11-05", NegotiateVersion("2024-11-05"))
	assert.Equal(t, ProtocolVersion, NegotiateVersion("1999-01-01"))
	assert.Equal(t, ProtocolVersion, NegotiateVersion(""))
}

func TestCallToolResult_JSON(t *testing.T) {
	res := CallToolResult{
		Content:           []Content{TextContent(`{"count":3}`)},
		StructuredContent: map[string]interface{}{"count": 3},
	}
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":[{"type":"text","text":"{\"count\":3}"}],"structuredContent":{"count":3}}`, string(out))
}
