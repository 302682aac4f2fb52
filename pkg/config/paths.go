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

// Package config loads the server configuration from file, environment and
// keyring, and watches the file for changes.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDirEnv overrides the data directory.
const DataDirEnv = "AUTOTASK_MCP_DATA_DIR"

// GetDataDir returns the data directory: $AUTOTASK_MCP_DATA_DIR when set,
// otherwise ~/.autotask-mcp. The result is absolute and ~ is expanded.
//
// It reads the environment directly because it runs before the config file,
// which it helps locate, has been read.
//
//	AUTOTASK_MCP_DATA_DIR=/srv/atmcp    -> /srv/atmcp
//	AUTOTASK_MCP_DATA_DIR=~/atmcp       -> /home/user/atmcp
//	AUTOTASK_MCP_DATA_DIR=rel/dir       -> /current/dir/rel/dir
//	unset                               -> /home/user/.autotask-mcp
func GetDataDir() string {
	if dir := os.Getenv(DataDirEnv); dir != "" {
		return ExpandPath(dir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autotask-mcp"
	}
	return filepath.Join(home, ".autotask-mcp")
}

// GetSubDir returns a directory below the data directory.
func GetSubDir(subdir string) string {
	return filepath.Join(GetDataDir(), subdir)
}

// ExpandPath expands a leading ~ and makes path absolute. Paths that cannot
// be resolved are returned unchanged.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
