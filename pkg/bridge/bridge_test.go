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

package bridge

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/format"
	"github.com/msoukhomlinov/autotask-mcp/pkg/observability"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

type stubProvider struct {
	read, write []entity.FieldDescriptor
	err         error
}

func (p *stubProvider) GetFields(_ context.Context, _ string, mode entity.Mode) ([]entity.FieldDescriptor, error) {
	if p.err != nil {
		return nil, p.err
	}
	if mode == entity.ModeWrite {
		return p.write, nil
	}
	return p.read, nil
}

func ticketProvider() *stubProvider {
	return &stubProvider{
		read: []entity.FieldDescriptor{{ID: "id"}, {ID: "title"}, {ID: "companyID"}, {ID: "status"}, {ID: "createDate"}},
		write: []entity.FieldDescriptor{
			{ID: "title", Required: true},
			{ID: "companyID", Required: true},
			{ID: "status"},
		},
	}
}

// recordingExecutor captures the parameters it was served.
type recordingExecutor struct {
	calls   int
	seen    map[string]interface{}
	records []entity.Record
	err     error
	panics  bool
}

func (e *recordingExecutor) Execute(_ context.Context, params ParameterSource) ([]entity.Record, error) {
	e.calls++
	e.seen = make(map[string]interface{})
	for _, name := range []string{
		NameResource, NameOperation, NameID, NameRequestBody, NameFilters, NameReturnAll,
		NameMaxRecords, NameAddPicklistLabels, NameAddReferenceLabels, NameFlattenUdfs,
		NameSelectColumns, NameDryRun, NameAllowWrite, NameSearchDomain, "hostOnly",
	} {
		v, err := params.GetParameter(name, 0, "fallback")
		if err != nil {
			return nil, err
		}
		e.seen[name] = v
	}
	if e.panics {
		panic("executor exploded")
	}
	return e.records, e.err
}

func hostGetter(name string, _ int, fallback interface{}) (interface{}, error) {
	if name == "hostOnly" {
		return "from-host", nil
	}
	return fallback, nil
}

func sameGetter(t *testing.T, want, got ParameterGetter) {
	t.Helper()
	assert.Equal(t, reflect.ValueOf(want).Pointer(), reflect.ValueOf(got).Pointer(), "getter not restored")
}

func TestBridge_GetScenario(t *testing.T) {
	host := NewHost(hostGetter)
	exec := &recordingExecutor{records: []entity.Record{{"id": float64(1234), "title": "Printer"}}}
	b := New(host, exec, ticketProvider(), WithLogger(zaptest.NewLogger(t)))

	env, failure := b.Call(context.Background(), "ticket", operation.Get, map[string]interface{}{"id": float64(1234)})
	require.Nil(t, failure)
	assert.Equal(t, entity.Record{"id": float64(1234), "title": "Printer"}, env["result"])

	assert.Equal(t, 1, exec.calls)
	assert.Equal(t, "1234", exec.seen[NameID])
	assert.Equal(t, "ticket", exec.seen[NameResource])
	assert.Equal(t, "get", exec.seen[NameOperation])
	assert.Equal(t, true, exec.seen[NameAddPicklistLabels])
	assert.Equal(t, true, exec.seen[NameAddReferenceLabels])
	assert.Equal(t, true, exec.seen[NameFlattenUdfs])
	assert.Equal(t, "from-host", exec.seen["hostOnly"], "unknown names fall through")

	sameGetter(t, hostGetter, host.Getter())
}

func TestBridge_GetManyThirtyScenario(t *testing.T) {
	records := make([]entity.Record, 30)
	for i := range records {
		records[i] = entity.Record{"id": float64(i + 1)}
	}
	exec := &recordingExecutor{records: records}
	tracer := observability.NewMockTracer()
	b := New(NewHost(nil), exec, ticketProvider(), WithTracer(tracer))

	env, failure := b.Call(context.Background(), "ticket", operation.GetMany, map[string]interface{}{
		"filter_field": "status",
		"filter_value": "1",
	})
	require.Nil(t, failure)
	assert.Len(t, env["results"], 25)
	assert.Equal(t, 25, env["count"])
	assert.Equal(t, true, env["truncated"])
	assert.Equal(t, 30, env["totalAvailable"])
	assert.NotEmpty(t, env["note"])

	assert.Equal(t, true, exec.seen[NameReturnAll])
	assert.Equal(t, "fallback", exec.seen[NameMaxRecords])
	assert.Equal(t, []operation.Filter{{Field: "status", Op: "eq", Value: "1"}}, exec.seen[NameFilters])

	assert.Len(t, tracer.GetMetrics(observability.MetricBridgeTruncated), 1)
	span := tracer.GetSpanByName(observability.SpanBridgeCall)
	require.NotNil(t, span)
	assert.Equal(t, observability.StatusOK, span.Status.Code)
	assert.Equal(t, 30, span.Attributes[observability.AttrRecordCount])
}

func TestBridge_LimitAndColumns(t *testing.T) {
	exec := &recordingExecutor{}
	b := New(NewHost(nil), exec, ticketProvider(), WithWriteEnabled(true), WithDryRun(true))

	_, failure := b.Call(context.Background(), "ticket", operation.GetMany, map[string]interface{}{
		"limit":  float64(5),
		"fields": "id, title",
	})
	require.Nil(t, failure)
	assert.Equal(t, false, exec.seen[NameReturnAll])
	assert.Equal(t, 5, exec.seen[NameMaxRecords])
	assert.Equal(t, []string{"id", "title"}, exec.seen[NameSelectColumns])
	assert.Equal(t, true, exec.seen[NameDryRun])
	assert.Equal(t, true, exec.seen[NameAllowWrite])
}

func TestBridge_CreateMissingRequiredScenario(t *testing.T) {
	exec := &recordingExecutor{}
	provider := &stubProvider{write: []entity.FieldDescriptor{{ID: "companyID", Required: true}, {ID: "firstName"}}}
	b := New(NewHost(nil), exec, provider, WithNamespace("psa"))

	env, failure := b.Call(context.Background(), "contact", operation.Create, map[string]interface{}{})
	assert.Nil(t, env)
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.MissingRequiredFields, failure.Kind)
	assert.Equal(t, []string{"companyID"}, failure.Context["missingFields"])
	assert.Contains(t, failure.NextAction, "psa_contact_describeFields")
	assert.Zero(t, exec.calls, "validation failures never reach the executor")
}

func TestBridge_UnknownFieldBeatsMissingRequired(t *testing.T) {
	exec := &recordingExecutor{}
	b := New(NewHost(nil), exec, ticketProvider())

	_, failure := b.Call(context.Background(), "ticket", operation.Create, map[string]interface{}{"bogus": 1})
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.InvalidWriteFields, failure.Kind)
	assert.Zero(t, exec.calls)
}

func TestBridge_CreateServesRequestBody(t *testing.T) {
	exec := &recordingExecutor{records: []entity.Record{{"id": float64(9)}}}
	b := New(NewHost(nil), exec, ticketProvider())

	env, failure := b.Call(context.Background(), "ticket", operation.Create, map[string]interface{}{
		"title":     "Printer",
		"companyID": float64(42),
	})
	require.Nil(t, failure)
	assert.Equal(t, entity.Record{"id": float64(9)}, env["result"])
	assert.Equal(t, map[string]interface{}{"title": "Printer", "companyID": float64(42)}, exec.seen[NameRequestBody])
}

func TestBridge_MissingEntityID(t *testing.T) {
	exec := &recordingExecutor{}
	b := New(NewHost(nil), exec, ticketProvider())

	_, failure := b.Call(context.Background(), "ticket", operation.Delete, map[string]interface{}{"id": "abc"})
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.MissingEntityID, failure.Kind)
	assert.Zero(t, exec.calls)
}

func TestBridge_ForbiddenScenario(t *testing.T) {
	host := NewHost(hostGetter)
	exec := &recordingExecutor{err: errors.New("403 Forbidden: access denied")}
	tracer := observability.NewMockTracer()
	b := New(host, exec, ticketProvider(), WithTracer(tracer), WithLogger(zaptest.NewLogger(t)))

	env, failure := b.Call(context.Background(), "ticket", operation.Get, map[string]interface{}{"id": "7"})
	assert.Nil(t, env)
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.PermissionDenied, failure.Kind)
	assert.Equal(t, "ticket.get", failure.Operation)
	sameGetter(t, hostGetter, host.Getter())

	metrics := tracer.GetMetrics(observability.MetricBridgeErrors)
	require.Len(t, metrics, 1)
	assert.Equal(t, string(agenterr.PermissionDenied), metrics[0].Labels[observability.AttrErrorKind])
}

func TestBridge_PanicRestoresGetter(t *testing.T) {
	host := NewHost(hostGetter)
	b := New(host, &recordingExecutor{panics: true}, ticketProvider())

	var (
		env     format.Envelope
		failure *agenterr.StructuredError
	)
	require.NotPanics(t, func() {
		env, failure = b.Call(context.Background(), "ticket", operation.Get, map[string]interface{}{"id": 1})
	})
	assert.Nil(t, env)
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.APIError, failure.Kind)
	assert.Equal(t, "ticket.get", failure.Operation)
	assert.Contains(t, failure.Message, "executor exploded")
	assert.NotEmpty(t, failure.NextAction)
	sameGetter(t, hostGetter, host.Getter())

	// The slot was released: a second call can install its override.
	exec := &recordingExecutor{}
	b2 := New(host, exec, ticketProvider())
	_, failure = b2.Call(context.Background(), "ticket", operation.Get, map[string]interface{}{"id": 1})
	require.Nil(t, failure)
	assert.Equal(t, "1", exec.seen[NameID])
}

func TestBridge_CancelledContextRestoresGetter(t *testing.T) {
	host := NewHost(hostGetter)
	exec := &recordingExecutor{}
	b := New(host, exec, ticketProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, failure := b.Call(ctx, "ticket", operation.Get, map[string]interface{}{"id": 1})
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.APIError, failure.Kind)
	assert.Zero(t, exec.calls)
	sameGetter(t, hostGetter, host.Getter())
}

func TestBridge_MetadataFailureSkipsValidation(t *testing.T) {
	exec := &recordingExecutor{records: []entity.Record{{"id": float64(1)}}}
	b := New(NewHost(nil), exec, &stubProvider{err: errors.New("metadata down")}, WithLogger(zaptest.NewLogger(t)))

	_, failure := b.Call(context.Background(), "ticket", operation.Create, map[string]interface{}{"anything": 1})
	require.Nil(t, failure)
	assert.Equal(t, 1, exec.calls)
}

func TestBridge_SearchByDomainNeedsDomain(t *testing.T) {
	exec := &recordingExecutor{}
	b := New(NewHost(nil), exec, nil)

	_, failure := b.Call(context.Background(), "company", operation.SearchByDomain, map[string]interface{}{})
	require.NotNil(t, failure)
	assert.Zero(t, exec.calls)

	_, failure = b.Call(context.Background(), "company", operation.SearchByDomain, map[string]interface{}{"domain": "example.com"})
	require.Nil(t, failure)
	assert.Equal(t, "example.com", exec.seen[NameSearchDomain])
}

func TestBridge_ConcurrentCallsDoNotCrossTalk(t *testing.T) {
	host := NewHost(nil)
	exec := ExecutorFunc(func(_ context.Context, params ParameterSource) ([]entity.Record, error) {
		id, err := params.GetParameter(NameID, 0, "")
		if err != nil {
			return nil, err
		}
		return []entity.Record{{"id": id}}, nil
	})
	b := New(host, exec, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			env, failure := b.Call(context.Background(), "ticket", operation.Get, map[string]interface{}{"id": n})
			if failure != nil {
				errs <- failure
				return
			}
			got := env["result"].(entity.Record)["id"]
			if got != fmt.Sprint(n) {
				errs <- fmt.Errorf("call %d saw id %v", n, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
