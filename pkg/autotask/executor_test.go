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
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/msoukhomlinov/autotask-mcp/pkg/agenterr"
	"github.com/msoukhomlinov/autotask-mcp/pkg/bridge"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// fakeAutotask records requests and answers from canned handlers keyed by
// "METHOD /path".
type fakeAutotask struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]map[string]interface{}
	routes   map[string]func(body map[string]interface{}) (int, interface{})
}

func newFakeAutotask() *fakeAutotask {
	return &fakeAutotask{
		bodies: make(map[string]map[string]interface{}),
		routes: make(map[string]func(map[string]interface{}) (int, interface{})),
	}
}

func (f *fakeAutotask) on(route string, fn func(body map[string]interface{}) (int, interface{})) {
	f.routes[route] = fn
}

func (f *fakeAutotask) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	var body map[string]interface{}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.requests = append(f.requests, route)
	f.bodies[route] = body
	fn, ok := f.routes[route]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"errors": []string{"no route " + route}})
		return
	}
	status, resp := fn(body)
	writeJSON(w, status, resp)
}

func (f *fakeAutotask) body(route string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[route]
}

func (f *fakeAutotask) sent(route string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r == route {
			return true
		}
	}
	return false
}

func reply(status int, v interface{}) func(map[string]interface{}) (int, interface{}) {
	return func(map[string]interface{}) (int, interface{}) { return status, v }
}

func ticketMetadata() entity.MapSource {
	return entity.MapSource{
		"ticket": {
			Resource: "ticket",
			Fields: []entity.RawField{
				{Name: "id", DataType: "long", IsReadOnly: true},
				{Name: "title", DataType: "string", IsRequired: true},
				{Name: "companyID", DataType: "integer", IsRequired: true, IsReference: true, ReferenceEntityType: "Company"},
				{Name: "status", DataType: "integer", IsRequired: true, IsPickList: true, PicklistValues: []entity.RawPicklistValue{
					{Value: "1", Label: "New"}, {Value: "5", Label: "Complete"},
				}},
			},
			UserDefinedFields: []entity.RawField{{Name: "Customer Reference", DataType: "string"}},
		},
		"contact": {
			Resource: "contact",
			Fields: []entity.RawField{
				{Name: "id", DataType: "long", IsReadOnly: true},
				{Name: "companyID", DataType: "integer", IsRequired: true, IsReference: true},
				{Name: "firstName", DataType: "string", IsRequired: true},
			},
		},
	}
}

type harness struct {
	fake   *fakeAutotask
	bridge *bridge.Bridge
}

func newHarness(t *testing.T, opts ...bridge.Option) *harness {
	t.Helper()
	fake := newFakeAutotask()
	client := newTestClient(t, fake)
	catalog := entity.NewCatalog(ticketMetadata())
	exec := NewExecutor(client, catalog, zaptest.NewLogger(t))
	b := bridge.New(bridge.NewHost(nil), exec, catalog, opts...)
	return &harness{fake: fake, bridge: b}
}

func (h *harness) call(t *testing.T, resource string, op operation.Kind, params map[string]interface{}) (map[string]interface{}, *agenterr.StructuredError) {
	t.Helper()
	env, failure := h.bridge.Call(context.Background(), resource, op, params)
	if env == nil {
		return nil, failure
	}
	// Round-trip through JSON the way the agent sees it.
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out, failure
}

func TestExecutor_GetWithLabelsAndUDFs(t *testing.T) {
	h := newHarness(t)
	h.fake.on("GET /Tickets/1234", reply(http.StatusOK, map[string]interface{}{"item": map[string]interface{}{
		"id": 1234, "title": "Printer", "status": 5, "companyID": 42,
		"userDefinedFields": []map[string]interface{}{{"name": "Customer Reference", "value": "PO-9"}},
	}}))
	h.fake.on("POST /Companies/query", reply(http.StatusOK, map[string]interface{}{
		"items": []map[string]interface{}{{"id": 42, "companyName": "Acme"}},
	}))

	out, failure := h.call(t, "ticket", operation.Get, map[string]interface{}{"id": float64(1234)})
	require.Nil(t, failure)
	result := out["result"].(map[string]interface{})
	assert.Equal(t, "Complete", result["status_label"])
	assert.Equal(t, "Acme", result["companyID_label"])
	assert.Equal(t, "PO-9", result["Customer Reference"])
	assert.NotContains(t, result, "userDefinedFields")

	lookup := h.fake.body("POST /Companies/query")
	require.NotNil(t, lookup)
	filter := lookup["filter"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "in", filter["op"])
	assert.Equal(t, []interface{}{float64(42)}, filter["value"])
}

func TestExecutor_GetSelectColumns(t *testing.T) {
	h := newHarness(t)
	h.fake.on("GET /Tickets/7", reply(http.StatusOK, map[string]interface{}{"item": map[string]interface{}{
		"id": 7, "title": "Printer", "status": 1, "companyID": 0,
	}}))

	out, failure := h.call(t, "ticket", operation.Get, map[string]interface{}{"id": "7", "fields": "status"})
	require.Nil(t, failure)
	assert.Equal(t, map[string]interface{}{"id": float64(7), "status": float64(1), "status_label": "New"}, out["result"])
}

func TestExecutor_GetManyTruncates(t *testing.T) {
	h := newHarness(t)
	items := make([]map[string]interface{}, 30)
	for i := range items {
		items[i] = map[string]interface{}{"id": i + 1, "status": 1}
	}
	h.fake.on("POST /Tickets/query", reply(http.StatusOK, map[string]interface{}{"items": items}))

	out, failure := h.call(t, "ticket", operation.GetMany, map[string]interface{}{
		"filter_field": "status", "filter_op": "eq", "filter_value": "1",
	})
	require.Nil(t, failure)
	assert.Len(t, out["results"], 25)
	assert.Equal(t, true, out["truncated"])
	assert.Equal(t, float64(30), out["totalAvailable"])

	q := h.fake.body("POST /Tickets/query")
	assert.Equal(t, float64(maxPageSize), q["MaxRecords"], "unbounded queries ask for full pages")
}

func TestExecutor_GetManyLimitAndColumns(t *testing.T) {
	h := newHarness(t)
	h.fake.on("POST /Tickets/query", reply(http.StatusOK, map[string]interface{}{
		"items": []map[string]interface{}{{"id": 1, "title": "A"}},
	}))

	_, failure := h.call(t, "ticket", operation.GetMany, map[string]interface{}{"limit": float64(5), "fields": "title"})
	require.Nil(t, failure)
	q := h.fake.body("POST /Tickets/query")
	assert.Equal(t, float64(5), q["MaxRecords"])
	assert.Equal(t, []interface{}{"id", "title"}, q["IncludeFields"])
}

func TestExecutor_Count(t *testing.T) {
	h := newHarness(t)
	h.fake.on("POST /Tickets/query/count", reply(http.StatusOK, map[string]interface{}{"queryCount": 321}))

	out, failure := h.call(t, "ticket", operation.Count, map[string]interface{}{})
	require.Nil(t, failure)
	assert.Equal(t, float64(321), out["count"])
}

func TestExecutor_WritesDisabled(t *testing.T) {
	h := newHarness(t)
	_, failure := h.call(t, "ticket", operation.Create, map[string]interface{}{
		"title": "x", "companyID": float64(1), "status": float64(1),
	})
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.PermissionDenied, failure.Kind)
	assert.False(t, h.fake.sent("POST /Tickets"))
}

func TestExecutor_CreateRoutesUDFsAndRereads(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true))
	h.fake.on("POST /Tickets", reply(http.StatusOK, map[string]interface{}{"itemId": 99}))
	h.fake.on("GET /Tickets/99", reply(http.StatusOK, map[string]interface{}{"item": map[string]interface{}{
		"id": 99, "title": "Printer", "status": 1, "companyID": 0,
	}}))

	out, failure := h.call(t, "ticket", operation.Create, map[string]interface{}{
		"title":              "Printer",
		"companyID":          float64(42),
		"status":             float64(1),
		"Customer Reference": "PO-1",
	})
	require.Nil(t, failure)
	assert.Equal(t, float64(99), out["result"].(map[string]interface{})["id"])

	body := h.fake.body("POST /Tickets")
	assert.NotContains(t, body, "Customer Reference")
	assert.Equal(t, []interface{}{map[string]interface{}{"name": "Customer Reference", "value": "PO-1"}}, body["userDefinedFields"])
}

func TestExecutor_CreateChildUnderParent(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true))
	h.fake.on("POST /Companies/42/Contacts", reply(http.StatusOK, map[string]interface{}{"itemId": 5}))
	h.fake.on("GET /Contacts/5", reply(http.StatusOK, map[string]interface{}{"item": map[string]interface{}{"id": 5}}))

	_, failure := h.call(t, "contact", operation.Create, map[string]interface{}{"companyID": float64(42), "firstName": "Ada"})
	require.Nil(t, failure)
	assert.True(t, h.fake.sent("POST /Companies/42/Contacts"))
}

func TestExecutor_DryRunSendsNothing(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true), bridge.WithDryRun(true))

	out, failure := h.call(t, "ticket", operation.Update, map[string]interface{}{"id": float64(8), "title": "New title"})
	require.Nil(t, failure)
	result := out["result"].(map[string]interface{})
	assert.Equal(t, true, result["dryRun"])
	assert.Equal(t, http.MethodPatch, result["method"])
	assert.Equal(t, map[string]interface{}{"id": float64(8), "title": "New title"}, result["body"])
	assert.False(t, h.fake.sent("PATCH /Tickets"))
}

func TestExecutor_UpdatePatchesAndRereads(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true))
	h.fake.on("PATCH /Tickets", reply(http.StatusOK, map[string]interface{}{"itemId": 8}))
	h.fake.on("GET /Tickets/8", reply(http.StatusOK, map[string]interface{}{"item": map[string]interface{}{"id": 8, "title": "New title"}}))

	out, failure := h.call(t, "ticket", operation.Update, map[string]interface{}{"id": "8", "title": "New title"})
	require.Nil(t, failure)
	assert.Equal(t, "New title", out["result"].(map[string]interface{})["title"])
	assert.Equal(t, map[string]interface{}{"id": float64(8), "title": "New title"}, h.fake.body("PATCH /Tickets"))
}

func TestExecutor_DeleteTimeEntry(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true))
	h.fake.on("DELETE /TimeEntries/31", reply(http.StatusOK, map[string]interface{}{"itemId": 31}))

	out, failure := h.call(t, "timeEntry", operation.Delete, map[string]interface{}{"id": float64(31)})
	require.Nil(t, failure)
	assert.Equal(t, map[string]interface{}{"id": float64(31), "deleted": true}, out["result"])
}

func TestExecutor_PostedFilter(t *testing.T) {
	h := newHarness(t)
	h.fake.on("POST /TimeEntries/query", reply(http.StatusOK, map[string]interface{}{"items": []interface{}{}}))

	_, failure := h.call(t, "timeEntry", operation.GetUnposted, map[string]interface{}{})
	require.Nil(t, failure)
	filters := h.fake.body("POST /TimeEntries/query")["filter"].([]interface{})
	require.Len(t, filters, 1)
	assert.Equal(t, "notExist", filters[0].(map[string]interface{})["op"])
	assert.Equal(t, billingApprovalField, filters[0].(map[string]interface{})["field"])
}

func TestExecutor_SearchByDomainFallsBackToContacts(t *testing.T) {
	h := newHarness(t)
	calls := 0
	h.fake.on("POST /Companies/query", func(body map[string]interface{}) (int, interface{}) {
		calls++
		filter := body["filter"].([]interface{})[0].(map[string]interface{})
		if filter["field"] == "webAddress" {
			assert.Equal(t, "example.com", filter["value"])
			return http.StatusOK, map[string]interface{}{"items": []interface{}{}}
		}
		assert.Equal(t, "in", filter["op"])
		return http.StatusOK, map[string]interface{}{"items": []map[string]interface{}{{"id": 42, "companyName": "Acme"}}}
	})
	h.fake.on("POST /Contacts/query", func(body map[string]interface{}) (int, interface{}) {
		filter := body["filter"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "@example.com", filter["value"])
		return http.StatusOK, map[string]interface{}{"items": []map[string]interface{}{{"id": 1, "companyID": 42}, {"id": 2, "companyID": 42}}}
	})

	out, failure := h.call(t, "company", operation.SearchByDomain, map[string]interface{}{"domain": "https://www.Example.com/about"})
	require.Nil(t, failure)
	assert.Equal(t, 2, calls)
	results := out["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, "Acme", results[0].(map[string]interface{})["companyName"])
}

func TestExecutor_WhoAmI(t *testing.T) {
	h := newHarness(t)
	h.fake.on("POST /Resources/query", func(body map[string]interface{}) (int, interface{}) {
		filter := body["filter"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "api@example.com", filter["value"])
		return http.StatusOK, map[string]interface{}{"items": []map[string]interface{}{{"id": 29682885, "firstName": "API"}}}
	})

	out, failure := h.call(t, "resource", operation.WhoAmI, map[string]interface{}{})
	require.Nil(t, failure)
	assert.Equal(t, float64(29682885), out["result"].(map[string]interface{})["id"])
}

func TestExecutor_UnsupportedOperation(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true))
	_, failure := h.call(t, "ticket", operation.Delete, map[string]interface{}{"id": "1"})
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.APIError, failure.Kind)
	assert.True(t, strings.Contains(failure.Message, "not supported"))
}

func TestExecutor_APIErrorsAreClassified(t *testing.T) {
	h := newHarness(t, bridge.WithWriteEnabled(true))
	h.fake.on("PATCH /Tickets", reply(http.StatusConflict, map[string]interface{}{"errors": []string{"record is being edited"}}))

	_, failure := h.call(t, "ticket", operation.Update, map[string]interface{}{"id": "3", "title": "x"})
	require.NotNil(t, failure)
	assert.Equal(t, agenterr.ConcurrencyConflict, failure.Kind)
	assert.True(t, failure.Retryable)
}

func TestExecutor_RejectsOutOfRangeIDs(t *testing.T) {
	h := newHarness(t)
	for _, id := range []string{"0", "99999999999999999999"} {
		t.Run(id, func(t *testing.T) {
			_, failure := h.call(t, "ticket", operation.Get, map[string]interface{}{"id": id})
			require.NotNil(t, failure)
			assert.Equal(t, agenterr.MissingEntityID, failure.Kind)
			assert.Contains(t, failure.NextAction, "ticket_getMany")
		})
	}
	assert.False(t, h.fake.sent("GET /Tickets/0"))
}

func TestExecutor_InvalidIDIsTyped(t *testing.T) {
	exec := NewExecutor(newTestClient(t, newFakeAutotask()), entity.NewCatalog(ticketMetadata()), zaptest.NewLogger(t))
	host := bridge.NewHost(func(name string, _ int, fallback interface{}) (interface{}, error) {
		switch name {
		case bridge.NameResource:
			return "ticket", nil
		case bridge.NameOperation:
			return string(operation.Get), nil
		case bridge.NameID:
			return "0", nil
		}
		return fallback, nil
	})

	_, err := exec.Execute(context.Background(), host)
	require.Error(t, err)

	failure := agenterr.Classify(err, agenterr.Call{Namespace: "psa", Resource: "ticket", Operation: string(operation.Get)})
	assert.Equal(t, agenterr.MissingEntityID, failure.Kind)
	assert.Equal(t, "ticket.get", failure.Operation)
	assert.Contains(t, failure.NextAction, "psa_ticket_getMany")
}

func TestExecutor_FilterValuesFollowFieldTypes(t *testing.T) {
	h := newHarness(t)
	h.fake.on("POST /Tickets/query", reply(http.StatusOK, map[string]interface{}{"items": []map[string]interface{}{}}))
	h.fake.on("POST /Tickets/query/count", reply(http.StatusOK, map[string]interface{}{"queryCount": 0}))

	params := map[string]interface{}{
		"filter_field":   "status",
		"filter_value":   "5",
		"filter_field_2": "title",
		"filter_value_2": "12",
	}
	_, failure := h.call(t, "ticket", operation.GetMany, params)
	require.Nil(t, failure)

	filters, ok := h.fake.body("POST /Tickets/query")["filter"].([]interface{})
	require.True(t, ok)
	require.Len(t, filters, 2)
	assert.Equal(t, float64(5), filters[0].(map[string]interface{})["value"], "numeric field sent as a number")
	assert.Equal(t, "12", filters[1].(map[string]interface{})["value"], "string field left as given")

	_, failure = h.call(t, "ticket", operation.Count, map[string]interface{}{"filter_field": "status", "filter_value": "1"})
	require.Nil(t, failure)
	counted := h.fake.body("POST /Tickets/query/count")["filter"].([]interface{})
	assert.Equal(t, float64(1), counted[0].(map[string]interface{})["value"])
}

func TestTypedFilters_ListValues(t *testing.T) {
	ticket, _ := LookupResource("ticket")
	c := &call{Executor: NewExecutor(nil, entity.NewCatalog(ticketMetadata()), zaptest.NewLogger(t)), r: ticket}
	in := []operation.Filter{
		{Op: "eq", Field: "companyID", Value: []interface{}{"7", "8", float64(9)}},
		{Op: "eq", Field: "unknownField", Value: "3"},
	}

	out := c.typedFilters(context.Background(), in)
	assert.Equal(t, []interface{}{int64(7), int64(8), float64(9)}, out[0].Value)
	assert.Equal(t, "3", out[1].Value, "fields without metadata are left as given")
	assert.Equal(t, []interface{}{"7", "8", float64(9)}, in[0].Value, "input is not modified")
}

func TestConvertFilterValue(t *testing.T) {
	assert.Equal(t, int64(42), convertFilterValue(entity.TypeNumber, " 42 "))
	assert.Equal(t, 1.5, convertFilterValue(entity.TypeNumber, "1.5"))
	assert.Equal(t, "abc", convertFilterValue(entity.TypeNumber, "abc"))
	assert.Equal(t, true, convertFilterValue(entity.TypeBoolean, "true"))
	assert.Equal(t, "2024-01-01", convertFilterValue(entity.TypeDateTime, "2024-01-01"))
}
