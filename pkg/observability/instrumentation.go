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

package observability

// Span names.
const (
	SpanMCPToolsList = "mcp.tools.list"
	SpanMCPToolsCall = "mcp.tools.call"

	SpanToolExecute = "tool.execute"
	SpanBridgeCall  = "bridge.call"

	SpanAutotaskRequest = "autotask.request"
	SpanMetadataLoad    = "metadata.load"
	SpanMetadataRefresh = "metadata.refresh"
	SpanToolsetBuild    = "toolset.build"
	SpanConfigReload    = "config.reload"
)

// Metric names.
const (
	MetricToolExecutions = "tool.executions.total"
	MetricToolErrors     = "tool.errors.total"
	MetricToolDuration   = "tool.duration"

	MetricBridgeCalls      = "bridge.calls.total"
	MetricBridgeErrors     = "bridge.errors.total"
	MetricBridgeTruncated  = "bridge.results.truncated.total"
	MetricValidationErrors = "bridge.validation.errors.total"

	MetricAutotaskRequests = "autotask.requests.total"
	MetricAutotaskRetries  = "autotask.retries.total"

	MetricMetadataCacheHits   = "metadata.cache.hits.total"
	MetricMetadataCacheMisses = "metadata.cache.misses.total"
)

// Attribute keys.
const (
	AttrTraceID = "trace.id"

	AttrToolName = "tool.name"
	AttrToolArgs = "tool.args"

	AttrResource      = "autotask.resource"
	AttrOperation     = "autotask.operation"
	AttrErrorKind     = "autotask.error.kind"
	AttrRecordCount   = "autotask.records"
	AttrHTTPMethod    = "http.method"
	AttrHTTPPath      = "http.path"
	AttrHTTPStatus    = "http.status_code"
	AttrCorrelationID = "correlation.id"

	AttrToolCount       = "toolset.tools"
	AttrRestartRequired = "config.restart_required"

	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)
