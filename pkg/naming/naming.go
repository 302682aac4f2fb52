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

// Package naming derives the deterministic tool names exposed to agents.
package naming

import (
	"strings"
	"unicode"
)

// DefaultNamespace prefixes every tool name unless configured otherwise.
const DefaultNamespace = "autotask"

// Companion tools registered once per resource.
const (
	HelperDescribeFields     = "describeFields"
	HelperListPicklistValues = "listPicklistValues"
)

// ToolName returns <namespace>_<resource>_<operation>. Empty namespace uses
// DefaultNamespace. The resource keeps its camelCase form with the first
// letter lowered ("TimeEntry" becomes "timeEntry").
func ToolName(namespace, resource, operation string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return sanitize(namespace) + "_" + sanitize(lowerFirst(resource)) + "_" + sanitize(operation)
}

// Parse splits a tool name into resource and operation for namespace.
func Parse(namespace, name string) (resource, operation string, ok bool) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	rest, found := strings.CutPrefix(name, sanitize(namespace)+"_")
	if !found {
		return "", "", false
	}
	i := strings.LastIndexByte(rest, '_')
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}

// sanitize keeps letters, digits and underscores; MCP tool names allow
// nothing else.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
