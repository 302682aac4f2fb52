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

// autotask-mcp serves the Autotask PSA REST API to agents as MCP tools whose
// schemas are synthesized from live field metadata.
//
// Usage:
//
//	autotask-mcp serve                      # stdio, for Claude Desktop and similar
//	autotask-mcp serve --transport http     # streamable HTTP on 127.0.0.1:8080/mcp
//	autotask-mcp tools                      # print the synthesized tool descriptors
//	autotask-mcp call autotask_ticket_get '{"id": 12345}'
//
// Claude Desktop configuration (claude_desktop_config.json):
//
//	{
//	  "mcpServers": {
//	    "autotask": {
//	      "command": "/path/to/autotask-mcp",
//	      "args": ["serve", "--config", "/path/to/autotask-mcp.yaml"]
//	    }
//	  }
//	}
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
