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

// Package version reports the build version.
package version

// Version and Commit are set at build time:
//
//	go build -ldflags="-X github.com/msoukhomlinov/autotask-mcp/internal/version.Version=v1.2.3 -X github.com/msoukhomlinov/autotask-mcp/internal/version.Commit=$(git rev-parse --short HEAD)"
var (
	Version = ""
	Commit  = ""
)

// Get returns the version, or "dev" for untagged builds.
func Get() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// String returns the version with the commit when known.
func String() string {
	if Commit == "" {
		return Get()
	}
	return Get() + " (" + Commit + ")"
}
