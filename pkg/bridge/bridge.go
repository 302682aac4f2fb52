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

// Package bridge runs agent tool calls through a generic executor that pulls
// its parameters by name. A call's flat parameter bag is partitioned,
// validated, and then served to the executor through a scoped override of
// the host's parameter getter that is always restored before Call returns.
package bridge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/format"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
	"github.com/msoukhomlinov/autotask-mcp/pkg/validate"
)

// Parameter names answered by the override.
const (
	NameResource           = "resource"
	NameOperation          = "operation"
	NameID                 = "id"
	NameRequestBody        = "requestBody"
	NameFieldsToMap        = "fieldsToMap"
	NameFilters            = "filters"
	NameReturnAll          = "returnAll"
	NameMaxRecords         = "maxRecords"
	NameAddPicklistLabels  = "addPicklistLabels"
	NameAddReferenceLabels = "addReferenceLabels"
	NameFlattenUdfs        = "flattenUdfs"
	NameSelectColumns      = "selectColumns"
	NameDryRun             = "dryRun"
	NameAllowWrite         = "allowWriteOperations"
	NameSearchDomain       = "searchDomain"
)

// Executor performs one operation, reading everything it needs from params.
type Executor interface {
	Execute(ctx context.Context, params ParameterSource) ([]entity.Record, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, params ParameterSource) ([]entity.Record, error)

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, params ParameterSource) ([]entity.Record, error) {
	return f(ctx, params)
}

// Bridge connects agent tool calls to an Executor.
type Bridge struct {
	host         *Host
	executor     Executor
	provider     entity.Provider
	namespace    string
	writeEnabled bool
	dryRun       bool
	logger       *zap.Logger
	tracer       observability.Tracer
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithNamespace sets the tool-name namespace used in next-action hints.
func WithNamespace(ns string) Option { return func(b *Bridge) { b.namespace = ns } }

// WithWriteEnabled answers allowWriteOperations.
func WithWriteEnabled(enabled bool) Option { return func(b *Bridge) { b.writeEnabled = enabled } }

// WithDryRun answers dryRun.
func WithDryRun(dryRun bool) Option { return func(b *Bridge) { b.dryRun = dryRun } }

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option { return func(b *Bridge) { b.logger = logger } }

// WithTracer sets the tracer.
func WithTracer(tracer observability.Tracer) Option { return func(b *Bridge) { b.tracer = tracer } }

// New creates a Bridge. provider supplies the field metadata validation runs
// against.
func New(host *Host, executor Executor, provider entity.Provider, opts ...Option) *Bridge {
	b := &Bridge{
		host:     host,
		executor: executor,
		provider: provider,
		logger:   zap.NewNop(),
		tracer:   observability.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.tracer == nil {
		b.tracer = observability.NewNoOpTracer()
	}
	return b
}

// Call runs op on resource with the agent's flat parameter bag. Exactly one
// of the returned values is non-nil: the formatted envelope on success, or
// the classified failure. Validation failures return before the executor is
// invoked.
func (b *Bridge) Call(ctx context.Context, resource string, op operation.Kind, params map[string]interface{}) (format.Envelope, *agenterr.StructuredError) {
	call := agenterr.Call{Namespace: b.namespace, Resource: resource, Operation: string(op)}
	correlationID := uuid.NewString()

	ctx, span := b.tracer.StartSpan(ctx, observability.SpanBridgeCall)
	defer b.tracer.EndSpan(span)
	span.SetAttribute(observability.AttrResource, resource)
	span.SetAttribute(observability.AttrOperation, string(op))
	span.SetAttribute(observability.AttrCorrelationID, correlationID)

	logger := b.logger.With(
		zap.String("resource", resource),
		zap.String("operation", string(op)),
		zap.String("correlation_id", correlationID),
		zap.String(observability.AttrTraceID, span.TraceID),
	)

	req := Partition(params)
	if failure := b.validate(ctx, call, op, req, logger); failure != nil {
		b.fail(span, failure)
		b.tracer.RecordMetric(observability.MetricValidationErrors, 1, map[string]string{
			observability.AttrErrorKind: string(failure.Kind),
		})
		logger.Debug("Call rejected by validation", zap.String("kind", string(failure.Kind)))
		return nil, failure
	}

	records, err := b.execute(ctx, resource, op, req)
	if err != nil {
		failure := agenterr.Classify(err, call)
		b.fail(span, failure)
		logger.Warn("Call failed", zap.String("kind", string(failure.Kind)), zap.Error(err))
		return nil, failure
	}

	envelope := format.Format(op, req.EntityID, records)
	labels := map[string]string{
		observability.AttrResource:  resource,
		observability.AttrOperation: string(op),
	}
	b.tracer.RecordMetric(observability.MetricBridgeCalls, 1, labels)
	if truncated, _ := envelope["truncated"].(bool); truncated {
		b.tracer.RecordMetric(observability.MetricBridgeTruncated, 1, labels)
	}
	span.SetAttribute(observability.AttrRecordCount, len(records))
	span.Status = observability.Status{Code: observability.StatusOK}
	logger.Debug("Call completed", zap.Int("records", len(records)))
	return envelope, nil
}

// execute installs the override for the duration of one executor call.
// A panicking executor is recovered here and returned as an error, so it is
// classified like any other failure.
func (b *Bridge) execute(ctx context.Context, resource string, op operation.Kind, req ExecutionRequest) (records []entity.Record, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("call cancelled: %w", err)
	}
	restore, err := b.host.Override(ctx, func(original ParameterGetter) ParameterGetter {
		return b.answer(resource, op, req, original)
	})
	if err != nil {
		return nil, fmt.Errorf("call cancelled: %w", err)
	}
	defer restore()
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("executor panicked: %v", r)
		}
	}()

	return b.executor.Execute(ctx, b.host)
}

// answer builds the getter that serves req and falls through to original
// for any name it does not own.
func (b *Bridge) answer(resource string, op operation.Kind, req ExecutionRequest, original ParameterGetter) ParameterGetter {
	return func(name string, index int, fallback interface{}) (interface{}, error) {
		switch name {
		case NameResource:
			return resource, nil
		case NameOperation:
			return string(op), nil
		case NameID:
			if req.EntityID == "" {
				return fallback, nil
			}
			return req.EntityID, nil
		case NameRequestBody:
			return req.FieldValues, nil
		case NameFieldsToMap:
			return map[string]interface{}{
				"mappingMode": "defineBelow",
				"value":       req.FieldValues,
			}, nil
		case NameFilters:
			return req.Filters, nil
		case NameReturnAll:
			return req.Limit == 0, nil
		case NameMaxRecords:
			if req.Limit == 0 {
				return fallback, nil
			}
			return req.Limit, nil
		case NameAddPicklistLabels, NameAddReferenceLabels, NameFlattenUdfs:
			return true, nil
		case NameSelectColumns:
			return req.SelectColumns, nil
		case NameDryRun:
			return b.dryRun, nil
		case NameAllowWrite:
			return b.writeEnabled, nil
		case NameSearchDomain:
			return req.Domain, nil
		}
		return original(name, index, fallback)
	}
}

// validate runs every check that applies to op and returns the first
// failure.
func (b *Bridge) validate(ctx context.Context, call agenterr.Call, op operation.Kind, req ExecutionRequest, logger *zap.Logger) *agenterr.StructuredError {
	if failure := validate.EntityID(call, req.EntityID, op); failure != nil {
		return failure
	}
	if op == operation.SearchByDomain && req.Domain == "" {
		return agenterr.New(agenterr.APIError, call, "searchByDomain requires a non-empty domain")
	}

	var readFields, writeFields []entity.FieldDescriptor
	if len(req.SelectColumns) > 0 || len(req.Filters) > 0 {
		readFields = b.fields(ctx, call.Resource, entity.ModeRead, logger)
	}
	if op == operation.Create || op == operation.Update {
		writeFields = b.fields(ctx, call.Resource, entity.ModeWrite, logger)
	}

	if op.Selectable() {
		if failure := validate.ReadFields(call, req.SelectColumns, readFields); failure != nil {
			return failure
		}
	}
	if op.Filterable() {
		if failure := validate.Filters(call, req.Filters, readFields); failure != nil {
			return failure
		}
	}
	if op == operation.Create || op == operation.Update {
		if failure := validate.WriteFields(call, req.FieldValues, writeFields, op); failure != nil {
			return failure
		}
	}
	return nil
}

// fields loads metadata for validation. A metadata failure skips the
// checks that need it; the API remains the final authority.
func (b *Bridge) fields(ctx context.Context, resource string, mode entity.Mode, logger *zap.Logger) []entity.FieldDescriptor {
	if b.provider == nil {
		return nil
	}
	fields, err := b.provider.GetFields(ctx, resource, mode)
	if err != nil {
		logger.Warn("Field metadata unavailable, skipping validation",
			zap.String("mode", string(mode)), zap.Error(err))
		return nil
	}
	return fields
}

func (b *Bridge) fail(span *observability.Span, failure *agenterr.StructuredError) {
	span.Status = observability.Status{Code: observability.StatusError, Message: failure.Message}
	span.SetAttribute(observability.AttrErrorKind, string(failure.Kind))
	b.tracer.RecordMetric(observability.MetricBridgeErrors, 1, map[string]string{
		observability.AttrErrorKind: string(failure.Kind),
		observability.AttrOperation: failure.Operation,
	})
}
