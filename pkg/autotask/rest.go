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

	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// maxPageSize is the largest page the query endpoint returns.
const maxPageSize = 500

// Query is the body of POST /{Entity}/query.
type Query struct {
	Filter        []operation.Filter `json:"filter"`
	MaxRecords    int                `json:"MaxRecords,omitempty"`
	IncludeFields []string           `json:"IncludeFields,omitempty"`
}

type pageDetails struct {
	Count        int    `json:"count"`
	RequestCount int    `json:"requestCount"`
	PrevPageURL  string `json:"prevPageUrl"`
	NextPageURL  string `json:"nextPageUrl"`
}

type queryResponse struct {
	Items       []entity.Record `json:"items"`
	PageDetails pageDetails     `json:"pageDetails"`
}

type itemResponse struct {
	Item entity.Record `json:"item"`
}

type countResponse struct {
	QueryCount int `json:"queryCount"`
}

type itemIDResponse struct {
	ItemID int64 `json:"itemId"`
}

type fieldsResponse struct {
	Fields []entity.RawField `json:"fields"`
}

// matchAll is the filter used when a query has none; the API rejects an
// empty filter list.
var matchAll = []operation.Filter{{Op: "gte", Field: "id", Value: 0}}

// Get fetches one record. A missing record is a 404 *APIError.
func (c *Client) Get(ctx context.Context, r Resource, id int64) (entity.Record, error) {
	var resp itemResponse
	path := r.path() + "/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Item == nil {
		return nil, &APIError{
			Method:   http.MethodGet,
			Path:     path,
			Status:   http.StatusNotFound,
			Messages: []string{fmt.Sprintf("%s %d does not exist", r.Name, id)},
		}
	}
	return resp.Item, nil
}

// Query returns up to limit matching records, following page links. A limit
// of 0 or less applies the client's MaxRecords cap.
func (c *Client) Query(ctx context.Context, r Resource, q Query, limit int) ([]entity.Record, error) {
	if limit <= 0 || limit > c.cfg.MaxRecords {
		limit = c.cfg.MaxRecords
	}
	if len(q.Filter) == 0 {
		q.Filter = matchAll
	}
	q.MaxRecords = min(limit, maxPageSize)

	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, r.path()+"/query", nil, q, &resp); err != nil {
		return nil, err
	}
	records := resp.Items
	next := resp.PageDetails.NextPageURL

	for next != "" && len(records) < limit {
		var page queryResponse
		if err := c.doURL(ctx, http.MethodGet, next, r.path()+"/query", nil, &page); err != nil {
			return nil, err
		}
		records = append(records, page.Items...)
		next = page.PageDetails.NextPageURL
	}

	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count returns the number of records matching filters.
func (c *Client) Count(ctx context.Context, r Resource, filters []operation.Filter) (int, error) {
	if len(filters) == 0 {
		filters = matchAll
	}
	var resp countResponse
	if err := c.do(ctx, http.MethodPost, r.path()+"/query/count", nil, Query{Filter: filters}, &resp); err != nil {
		return 0, err
	}
	return resp.QueryCount, nil
}

// Create posts a new record and returns its id. parentID locates child
// entities and is ignored for top-level ones.
func (c *Client) Create(ctx context.Context, r Resource, parentID int64, body map[string]interface{}) (int64, error) {
	var resp itemIDResponse
	if err := c.do(ctx, http.MethodPost, r.writePath(parentID), nil, body, &resp); err != nil {
		return 0, err
	}
	return resp.ItemID, nil
}

// Update patches the record identified by id with body. Fields absent from
// body are left unchanged.
func (c *Client) Update(ctx context.Context, r Resource, parentID, id int64, body map[string]interface{}) (int64, error) {
	patch := make(map[string]interface{}, len(body)+1)
	for k, v := range body {
		patch[k] = v
	}
	patch["id"] = id

	var resp itemIDResponse
	if err := c.do(ctx, http.MethodPatch, r.writePath(parentID), nil, patch, &resp); err != nil {
		return 0, err
	}
	if resp.ItemID == 0 {
		resp.ItemID = id
	}
	return resp.ItemID, nil
}

// Delete removes the record identified by id.
func (c *Client) Delete(ctx context.Context, r Resource, parentID, id int64) error {
	path := r.writePath(parentID) + "/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// FieldInfo returns the standard field metadata of r.
func (c *Client) FieldInfo(ctx context.Context, r Resource) ([]entity.RawField, error) {
	var resp fieldsResponse
	if err := c.do(ctx, http.MethodGet, r.path()+"/entityInformation/fields", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

// UserDefinedFieldInfo returns the user-defined field metadata of r.
func (c *Client) UserDefinedFieldInfo(ctx context.Context, r Resource) ([]entity.RawField, error) {
	var resp fieldsResponse
	if err := c.do(ctx, http.MethodGet, r.path()+"/entityInformation/userDefinedFields", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

// writePath returns the path writes go to: nested under the parent for
// child entities when the parent id is known.
func (r Resource) writePath(parentID int64) string {
	if r.Parent != "" && parentID > 0 {
		return "/" + r.Parent + "/" + strconv.FormatInt(parentID, 10) + r.path()
	}
	return r.path()
}
