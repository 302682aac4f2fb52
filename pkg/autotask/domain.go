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
	"net/url"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/bridge"
	"github.com/msoukhomlinov/autotask-mcp/pkg/entity"
	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// NormalizeDomain reduces a bare domain, URL or e-mail address to its
// lower-case host without a leading "www.". It returns "" when nothing
// host-like remains.
func NormalizeDomain(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	if at := strings.LastIndex(s, "@"); at >= 0 && !strings.Contains(s, "/") {
		s = s[at+1:]
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(u.Hostname(), ".")
	host = strings.TrimPrefix(host, "www.")
	if !strings.Contains(host, ".") {
		return ""
	}
	return host
}

// searchByDomain matches companies by webAddress and falls back to the
// companies of contacts whose e-mail address is in the domain.
func (c *call) searchByDomain(ctx context.Context) ([]entity.Record, error) {
	domain := NormalizeDomain(c.p.str(bridge.NameSearchDomain))
	if domain == "" {
		return nil, fmt.Errorf("searchByDomain requires a domain such as example.com")
	}

	limit := 0
	if !c.p.boolean(bridge.NameReturnAll, true) {
		limit = c.p.integer(bridge.NameMaxRecords)
	}
	include := includeFields(c.p.list(bridge.NameSelectColumns))

	q := Query{
		Filter:        []operation.Filter{{Op: "contains", Field: "webAddress", Value: domain}},
		IncludeFields: include,
	}
	companies, err := c.client.Query(ctx, c.r, q, limit)
	if err != nil {
		return nil, err
	}
	if len(companies) > 0 {
		return c.shape(ctx, companies), nil
	}

	contactResource, _ := LookupResource("contact")
	contacts, err := c.client.Query(ctx, contactResource, Query{
		Filter:        []operation.Filter{{Op: "endsWith", Field: "emailAddress", Value: "@" + domain}},
		IncludeFields: []string{"id", "companyID"},
	}, 0)
	if err != nil {
		return nil, err
	}
	ids := referencedIDs(contacts, []string{"companyID"})
	if len(ids) == 0 {
		return []entity.Record{}, nil
	}

	q = Query{
		Filter:        []operation.Filter{{Op: "in", Field: "id", Value: ids}},
		IncludeFields: include,
	}
	companies, err = c.client.Query(ctx, c.r, q, limit)
	if err != nil {
		return nil, err
	}
	return c.shape(ctx, companies), nil
}
