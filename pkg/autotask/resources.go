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
	"sort"
	"strings"

	"github.com/msoukhomlinov/autotask-mcp/pkg/operation"
)

// Resource maps a resource id onto its REST entity.
type Resource struct {
	// Name is the resource id used in tool names (camelCase singular).
	Name string

	// Entity is the REST path segment, e.g. "Tickets".
	Entity string

	// Parent and ParentField locate child entities that are created and
	// deleted under their parent, e.g. /Companies/{companyID}/Contacts.
	Parent      string
	ParentField string

	// LabelFields are joined to label references to this resource.
	LabelFields []string

	// Operations are the kinds the resource supports.
	Operations []operation.Kind
}

var (
	readOps  = []operation.Kind{operation.Get, operation.GetMany, operation.Count}
	writeOps = []operation.Kind{operation.Get, operation.GetMany, operation.Count, operation.Create, operation.Update}
)

// Resources is the table of supported resources.
var Resources = []Resource{
	{Name: "company", Entity: "Companies", LabelFields: []string{"companyName"},
		Operations: append(append([]operation.Kind{}, writeOps...), operation.SearchByDomain)},
	{Name: "companyNote", Entity: "CompanyNotes", Parent: "Companies", ParentField: "companyID",
		LabelFields: []string{"title"}, Operations: writeOps},
	{Name: "contact", Entity: "Contacts", Parent: "Companies", ParentField: "companyID",
		LabelFields: []string{"firstName", "lastName"}, Operations: writeOps},
	{Name: "ticket", Entity: "Tickets", LabelFields: []string{"ticketNumber"}, Operations: writeOps},
	{Name: "ticketNote", Entity: "TicketNotes", Parent: "Tickets", ParentField: "ticketID",
		LabelFields: []string{"title"}, Operations: writeOps},
	{Name: "project", Entity: "Projects", LabelFields: []string{"projectName"}, Operations: writeOps},
	{Name: "task", Entity: "Tasks", Parent: "Projects", ParentField: "projectID",
		LabelFields: []string{"title"}, Operations: writeOps},
	{Name: "timeEntry", Entity: "TimeEntries",
		Operations: append(append([]operation.Kind{}, writeOps...),
			operation.Delete, operation.GetPosted, operation.GetUnposted)},
	{Name: "resource", Entity: "Resources", LabelFields: []string{"firstName", "lastName"},
		Operations: append(append([]operation.Kind{}, readOps...), operation.WhoAmI)},
	{Name: "configurationItem", Entity: "ConfigurationItems", LabelFields: []string{"referenceTitle"}, Operations: writeOps},
	{Name: "contract", Entity: "Contracts", LabelFields: []string{"contractName"}, Operations: readOps},
	{Name: "opportunity", Entity: "Opportunities", LabelFields: []string{"title"}, Operations: writeOps},
	{Name: "quote", Entity: "Quotes", LabelFields: []string{"name"}, Operations: writeOps},
	{Name: "product", Entity: "Products", LabelFields: []string{"name"}, Operations: readOps},
	{Name: "invoice", Entity: "Invoices", LabelFields: []string{"invoiceNumber"}, Operations: readOps},
	{Name: "serviceCall", Entity: "ServiceCalls", LabelFields: []string{"description"},
		Operations: append(append([]operation.Kind{}, writeOps...), operation.Delete)},
	{Name: "billingCode", Entity: "BillingCodes", LabelFields: []string{"name"}, Operations: readOps},
	{Name: "role", Entity: "Roles", LabelFields: []string{"name"}, Operations: readOps},
	{Name: "department", Entity: "Departments", LabelFields: []string{"name"}, Operations: readOps},
}

// LookupResource finds a resource by id, case-insensitively.
func LookupResource(name string) (Resource, bool) {
	for _, r := range Resources {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Resource{}, false
}

// ResourceNames returns the sorted resource ids.
func ResourceNames() []string {
	names := make([]string, len(Resources))
	for i, r := range Resources {
		names[i] = r.Name
	}
	sort.Strings(names)
	return names
}

// Supports reports whether op is enabled for the resource.
func (r Resource) Supports(op operation.Kind) bool {
	for _, k := range r.Operations {
		if k == op {
			return true
		}
	}
	return false
}

// path returns the collection path, e.g. /Tickets.
func (r Resource) path() string { return "/" + r.Entity }
