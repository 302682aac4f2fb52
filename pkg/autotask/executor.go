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
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/msoukhomlinov/autotask-mcp/pkg/bridge"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// billingApprovalField marks time entries that have been posted.
const billingApprovalField = "billingApprovalDateTime"

// StatusError is a local failure that maps onto an HTTP status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string   { return e.Message }
func (e *StatusError) StatusCode() int { return e.Status }

// ErrWritesDisabled rejects writes when allowWriteOperations is false.
var ErrWritesDisabled = &StatusError{
	Status:  http.StatusForbidden,
	Message: "write operations are disabled by configuration",
}

// Metadata is the field metadata the executor labels records with.
type Metadata interface {
	entity.Provider
	entity.PicklistProvider
}

// Executor runs one Autotask operation per call, reading every input from
// the parameter source it is handed.
type Executor struct {
	client *Client
	meta   Metadata
	logger *zap.Logger
}

// NewExecutor creates an executor. meta may be nil, which disables labels
// and UDF routing on writes.
func NewExecutor(client *Client, meta Metadata, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{client: client, meta: meta, logger: logger}
}

// Execute implements bridge.Executor.
func (e *Executor) Execute(ctx context.Context, src bridge.ParameterSource) ([]entity.Record, error) {
	p := &params{src: src}
	resourceName := p.str(bridge.NameResource)
	opName := p.str(bridge.NameOperation)
	if p.err != nil {
		return nil, p.err
	}

	r, ok := LookupResource(resourceName)
	if !ok {
		return nil, fmt.Errorf("unsupported resource %q", resourceName)
	}
	op, err := operation.Parse(opName)
	if err != nil {
		return nil, err
	}
	if !r.Supports(op) {
		return nil, fmt.Errorf("operation %s is not supported on %s", op, r.Name)
	}
	if op.IsWrite() && !p.boolean(bridge.NameAllowWrite, false) {
		return nil, ErrWritesDisabled
	}

	c := &call{
		Executor: e,
		r:        r,
		op:       op,
		p:        p,
	}
	records, err := c.run(ctx)
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	return records, nil
}

// call is the state of one Execute.
type call struct {
	*Executor
	r  Resource
	op operation.Kind
	p  *params
}

func (c *call) run(ctx context.Context) ([]entity.Record, error) {
	switch c.op {
	case operation.Get:
		return c.get(ctx)
	case operation.GetMany:
		return c.query(ctx, c.p.filters())
	case operation.GetPosted:
		return c.query(ctx, append(c.p.filters(), operation.Filter{Op: "exist", Field: billingApprovalField}))
	case operation.GetUnposted:
		return c.query(ctx, append(c.p.filters(), operation.Filter{Op: "notExist", Field: billingApprovalField}))
	case operation.Count:
		n, err := c.client.Count(ctx, c.r, c.typedFilters(ctx, c.p.filters()))
		if err != nil {
			return nil, err
		}
		return []entity.Record{{"count": n}}, nil
	case operation.Create:
		return c.create(ctx)
	case operation.Update:
		return c.update(ctx)
	case operation.Delete:
		return c.delete(ctx)
	case operation.SearchByDomain:
		return c.searchByDomain(ctx)
	case operation.WhoAmI:
		return c.whoAmI(ctx)
	}
	return nil, fmt.Errorf("operation %s is not supported on %s", c.op, c.r.Name)
}

func (c *call) get(ctx context.Context) ([]entity.Record, error) {
	id, err := parseID(c.p.str(bridge.NameID))
	if err != nil {
		return nil, err
	}
	rec, err := c.client.Get(ctx, c.r, id)
	if err != nil {
		return nil, err
	}
	shaped := c.shape(ctx, []entity.Record{rec})
	return []entity.Record{selectColumns(shaped[0], c.p.list(bridge.NameSelectColumns))}, nil
}

func (c *call) query(ctx context.Context, filters []operation.Filter) ([]entity.Record, error) {
	limit := 0
	if !c.p.boolean(bridge.NameReturnAll, true) {
		limit = c.p.integer(bridge.NameMaxRecords)
	}
	q := Query{Filter: c.typedFilters(ctx, filters), IncludeFields: includeFields(c.p.list(bridge.NameSelectColumns))}
	records, err := c.client.Query(ctx, c.r, q, limit)
	if err != nil {
		return nil, err
	}
	return c.shape(ctx, records), nil
}

func (c *call) create(ctx context.Context) ([]entity.Record, error) {
	body := c.writeBody(ctx, c.p.body())
	parentID := c.parentFromBody(body)
	if c.p.boolean(bridge.NameDryRun, false) {
		return dryRun(http.MethodPost, c.r.writePath(parentID), body), nil
	}

	id, err := c.client.Create(ctx, c.r, parentID, body)
	if err != nil {
		return nil, err
	}
	return c.reread(ctx, id), nil
}

func (c *call) update(ctx context.Context) ([]entity.Record, error) {
	id, err := parseID(c.p.str(bridge.NameID))
	if err != nil {
		return nil, err
	}
	body := c.writeBody(ctx, c.p.body())
	parentID, err := c.parentOf(ctx, id, body)
	if err != nil {
		return nil, err
	}
	if c.p.boolean(bridge.NameDryRun, false) {
		preview := make(map[string]interface{}, len(body)+1)
		for k, v := range body {
			preview[k] = v
		}
		preview["id"] = id
		return dryRun(http.MethodPatch, c.r.writePath(parentID), preview), nil
	}

	if _, err := c.client.Update(ctx, c.r, parentID, id, body); err != nil {
		return nil, err
	}
	return c.reread(ctx, id), nil
}

func (c *call) delete(ctx context.Context) ([]entity.Record, error) {
	id, err := parseID(c.p.str(bridge.NameID))
	if err != nil {
		return nil, err
	}
	parentID, err := c.parentOf(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	path := fmt.Sprintf("%s/%d", c.r.writePath(parentID), id)
	if c.p.boolean(bridge.NameDryRun, false) {
		return dryRun(http.MethodDelete, path, nil), nil
	}
	if err := c.client.Delete(ctx, c.r, parentID, id); err != nil {
		return nil, err
	}
	return nil, nil
}

func (c *call) whoAmI(ctx context.Context) ([]entity.Record, error) {
	username := c.client.Username()
	for _, field := range []string{"email", "userName"} {
		q := Query{Filter: []operation.Filter{{Op: "eq", Field: field, Value: username}}}
		records, err := c.client.Query(ctx, c.r, q, 1)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			return c.shape(ctx, records), nil
		}
	}
	return nil, &StatusError{
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("no resource found for API user %s", username),
	}
}

// reread fetches a record after a write so the agent sees server-side
// defaults. A failed re-read still reports the id.
func (c *call) reread(ctx context.Context, id int64) []entity.Record {
	rec, err := c.client.Get(ctx, c.r, id)
	if err != nil {
		c.logger.Warn("Re-read after write failed",
			zap.String("resource", c.r.Name), zap.Int64("id", id), zap.Error(err))
		return []entity.Record{{"id": id}}
	}
	return c.shape(ctx, []entity.Record{rec})
}

// parentFromBody reads the parent id of a child entity from the body.
func (c *call) parentFromBody(body map[string]interface{}) int64 {
	if c.r.Parent == "" {
		return 0
	}
	for k, v := range body {
		if strings.EqualFold(k, c.r.ParentField) {
			if id, ok := toInt64(v); ok {
				return id
			}
		}
	}
	return 0
}

// parentOf resolves the parent id of an existing child record, reading the
// record when the body does not name it.
func (c *call) parentOf(ctx context.Context, id int64, body map[string]interface{}) (int64, error) {
	if c.r.Parent == "" {
		return 0, nil
	}
	if parentID := c.parentFromBody(body); parentID > 0 {
		return parentID, nil
	}
	rec, err := c.client.Get(ctx, c.r, id)
	if err != nil {
		return 0, err
	}
	parentID, _ := toInt64(rec[c.r.ParentField])
	return parentID, nil
}

// typedFilters converts string filter values on numeric and boolean fields
// to JSON numbers and booleans. Values that do not parse, and every filter
// when read metadata is unavailable, are sent as given.
func (c *call) typedFilters(ctx context.Context, filters []operation.Filter) []operation.Filter {
	if c.meta == nil || len(filters) == 0 {
		return filters
	}
	fields, err := c.meta.GetFields(ctx, c.r.Name, entity.ModeRead)
	if err != nil {
		c.logger.Debug("Read metadata unavailable, sending filter values as given",
			zap.String("resource", c.r.Name), zap.Error(err))
		return filters
	}

	out := make([]operation.Filter, len(filters))
	for i, f := range filters {
		out[i] = f
		field, ok := entity.Find(fields, f.Field)
		if !ok {
			continue
		}
		switch v := f.Value.(type) {
		case string:
			out[i].Value = convertFilterValue(field.Type, v)
		case []interface{}:
			converted := make([]interface{}, len(v))
			for j, item := range v {
				converted[j] = item
				if s, ok := item.(string); ok {
					converted[j] = convertFilterValue(field.Type, s)
				}
			}
			out[i].Value = converted
		}
	}
	return out
}

func convertFilterValue(t entity.FieldType, s string) interface{} {
	trimmed := strings.TrimSpace(s)
	switch t {
	case entity.TypeNumber:
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case entity.TypeBoolean:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b
		}
	}
	return s
}

// writeBody moves user-defined fields into the userDefinedFields array the
// API expects.
func (c *call) writeBody(ctx context.Context, values map[string]interface{}) map[string]interface{} {
	body := make(map[string]interface{}, len(values))
	for k, v := range values {
		body[k] = v
	}
	if c.meta == nil {
		return body
	}
	fields, err := c.meta.GetFields(ctx, c.r.Name, entity.ModeWrite)
	if err != nil {
		c.logger.Warn("Write metadata unavailable, sending fields as given",
			zap.String("resource", c.r.Name), zap.Error(err))
		return body
	}

	var udfs []map[string]interface{}
	for _, f := range fields {
		if !f.IsUserDefined {
			continue
		}
		for k, v := range body {
			if strings.EqualFold(k, f.ID) {
				udfs = append(udfs, map[string]interface{}{"name": f.ID, "value": v})
				delete(body, k)
			}
		}
	}
	if len(udfs) > 0 {
		body["userDefinedFields"] = udfs
	}
	return body
}

func dryRun(method, path string, body map[string]interface{}) []entity.Record {
	rec := entity.Record{
		"dryRun": true,
		"method": method,
		"path":   path,
	}
	if body != nil {
		rec["body"] = body
	}
	return []entity.Record{rec}
}
