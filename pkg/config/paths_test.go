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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)

	tests := []struct {
		name string
		env  string
		want string
	}{
		{"default", "", filepath.Join(home, ".autotask-mcp")},
		{"absolute", "/srv/atmcp", "/srv/atmcp"},
		{"tilde", "~/custom/atmcp", filepath.Join(home, "custom", "atmcp")},
		{"relative", "rel/dir", filepath.Join(wd, "rel", "dir")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DataDirEnv, tt.env)
			assert.Equal(t, tt.want, GetDataDir())
		})
	}
}

func TestGetSubDir(t *testing.T) {
	t.Setenv(DataDirEnv, "/srv/atmcp")
	assert.Equal(t, "/srv/atmcp/cache", GetSubDir("cache"))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "a"), ExpandPath("~/a"))
	assert.Equal(t, "/x/y", ExpandPath("/x/y/"))
}
