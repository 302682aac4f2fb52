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
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrorCodeExecutionFailed marks a tool that returned a Go error or panicked.
const ErrorCodeExecutionFailed = "execution_failed"

// Executor runs tools from a registry.
type Executor struct {
	registry *Registry
	logger   *zap.Logger
}

// NewExecutor creates an executor over registry.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{registry: registry, logger: logger}
}

// Registry returns the registry the executor reads from.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs the named tool. An unknown tool is a Go error; every failure
// of a known tool is reported inside the Result.
func (e *Executor) Execute(ctx context.Context, toolName string, params map[string]interface{}) (*Result, error) {
	tool, ok := e.registry.Get(toolName)
	if !ok {
		return nil, fmt.Errorf("tool not found: %s", toolName)
	}
	return e.ExecuteWithTool(ctx, tool, params)
}

// ExecuteWithTool runs a specific tool instance.
func (e *Executor) ExecuteWithTool(ctx context.Context, tool Tool, params map[string]interface{}) (result *Result, err error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	params = normalizeParametersToSchema(tool, params)

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool panicked",
				zap.String("tool", tool.Name()),
				zap.Any("panic", r))
			result = &Result{
				Success: false,
				Error: &Error{
					Code:    ErrorCodeExecutionFailed,
					Message: fmt.Sprintf("tool %s panicked: %v", tool.Name(), r),
				},
				ExecutionTimeMs: time.Since(start).Milliseconds(),
			}
			err = nil
		}
	}()

	result, err = tool.Execute(ctx, params)
	duration := time.Since(start)

	if err != nil {
		e.logger.Warn("tool execution failed",
			zap.String("tool", tool.Name()),
			zap.Duration("duration", duration),
			zap.Error(err))
		return &Result{
			Success:         false,
			Error:           &Error{Code: ErrorCodeExecutionFailed, Message: err.Error()},
			ExecutionTimeMs: duration.Milliseconds(),
		}, nil
	}

	if result == nil {
		result = &Result{Success: true}
	}
	// Executor timing is authoritative.
	result.ExecutionTimeMs = duration.Milliseconds()

	e.logger.Debug("tool executed",
		zap.String("tool", tool.Name()),
		zap.Bool("success", result.Success),
		zap.Duration("duration", duration))
	return result, nil
}

// normalizeParametersToSchema renames parameters whose names match a schema
// property once case and underscores are ignored, so company_id and
// CompanyID both reach the tool as companyID. Unmatched names pass through.
func normalizeParametersToSchema(tool Tool, params map[string]interface{}) map[string]interface{} {
	if len(params) == 0 {
		return params
	}
	schema := tool.InputSchema()
	if schema == nil || len(schema.Properties) == 0 {
		return params
	}

	schemaKeys := make(map[string]string, len(schema.Properties))
	for key := range schema.Properties {
		schemaKeys[foldKey(key)] = key
	}

	normalized := make(map[string]interface{}, len(params))
	for key, value := range params {
		if _, exact := schema.Properties[key]; exact {
			normalized[key] = value
			continue
		}
		if schemaKey, ok := schemaKeys[foldKey(key)]; ok {
			if _, taken := params[schemaKey]; !taken {
				normalized[schemaKey] = value
				continue
			}
		}
		normalized[key] = value
	}
	return normalized
}

func foldKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}
