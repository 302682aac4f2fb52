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

// Package transport moves JSON-RPC messages between an MCP client and the
// server: newline-delimited over stdio, or one POST per message over HTTP.
package transport

import "context"

// Transport is a bidirectional message stream.
type Transport interface {
	// Send writes one encoded message.
	Send(ctx context.Context, message []byte) error

	// Receive blocks until the next message arrives.
	Receive(ctx context.Context) ([]byte, error)

	Close() error
}
