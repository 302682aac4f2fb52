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

package autotask

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/bridge"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// params reads typed values from a bridge.ParameterSource, keeping the
// first retrieval error.
type params struct {
	src bridge.ParameterSource
	err error
}

func (p *params) get(name string, fallback interface{}) interface{} {
	if p.err != nil {
		return fallback
	}
	v, err := p.src.GetParameter(name, 0, fallback)
	if err != nil {
		p.err = fmt.Errorf("failed to read parameter %s: %w", name, err)
		return fallback
	}
	return v
}

func (p *params) str(name string) string {
	switch v := p.get(name, "").(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (p *params) boolean(name string, fallback bool) bool {
	switch v := p.get(name, fallback).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return b
	default:
		return fallback
	}
}

func (p *params) integer(name string) int {
	switch v := p.get(name, 0).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(v))
		return n
	default:
		return 0
	}
}

func (p *params) list(name string) []string {
	switch v := p.get(name, nil).(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

func (p *params) filters() []operation.Filter {
	switch v := p.get(bridge.NameFilters, nil).(type) {
	case []operation.Filter:
		return v
	case nil:
		return nil
	default:
		// Hosts that pass plain JSON structures.
		raw, err := json.Marshal(v)
		if err != nil {
			p.err = fmt.Errorf("invalid filters parameter: %w", err)
			return nil
		}
		var out []operation.Filter
		if err := json.Unmarshal(raw, &out); err != nil {
			p.err = fmt.Errorf("invalid filters parameter: %w", err)
			return nil
		}
		return out
	}
}

func (p *params) body() map[string]interface{} {
	switch v := p.get(bridge.NameRequestBody, nil).(type) {
	case map[string]interface{}:
		return v
	default:
		return map[string]interface{}{}
	}
}

// parseID converts an id parameter to int64. The failure is typed so the
// bridge classifies it as MISSING_ENTITY_ID and fills in the call.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, &agenterr.StructuredError{
			Kind:    agenterr.MissingEntityID,
			Message: fmt.Sprintf("missing or invalid id %q", s),
		}
	}
	return id, nil
}

// toInt64 converts a decoded JSON number to int64.
func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), n == float64(int64(n))
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	}
	return 0, false
}
