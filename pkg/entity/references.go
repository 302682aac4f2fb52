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

package entity

import (
	"strings"
	"unicode"
)

// directReferences maps lower-cased field ids to the entity they point at.
var directReferences = map[string]string{
	"companyid":                "company",
	"parentcompanyid":          "company",
	"contactid":                "contact",
	"resourceid":               "resource",
	"assignedresourceid":       "resource",
	"creatorresourceid":        "resource",
	"ownerresourceid":          "resource",
	"projectleadresourceid":    "resource",
	"completedbyresourceid":    "resource",
	"projectid":                "project",
	"ticketid":                 "ticket",
	"taskid":                   "task",
	"phaseid":                  "phase",
	"contractid":               "contract",
	"contractserviceid":        "contractService",
	"configurationitemid":      "configurationItem",
	"installedproductid":       "configurationItem",
	"opportunityid":            "opportunity",
	"quoteid":                  "quote",
	"productid":                "product",
	"billingcodeid":            "billingCode",
	"allocationcodeid":         "billingCode",
	"roleid":                   "role",
	"assignedresourceroleid":   "role",
	"departmentid":             "department",
	"companylocationid":        "companyLocation",
	"servicelevelagreementid":  "serviceLevelAgreement",
	"billtocompanylocationid":  "companyLocation",
	"accountmanagerresourceid": "resource",
}

// referenceAliases corrects base names that do not match an entity name
// after the ID suffix is stripped. Keys are lower-cased.
var referenceAliases = map[string]string{
	"account":          "company",
	"accountmanager":   "resource",
	"installedproduct": "configurationItem",
	"allocationcode":   "billingCode",
	"creator":          "resource",
	"owner":            "resource",
	"completedby":      "resource",
	"lastactivityby":   "resource",
	"impersonator":     "resource",
	"location":         "companyLocation",
	"sla":              "serviceLevelAgreement",
}

// roleSuffixes resolve "<role><Entity>" names such as assignedResource or
// billToCompany to the trailing entity.
var roleSuffixes = []struct {
	suffix string
	entity string
}{
	{"Resource", "resource"},
	{"Company", "company"},
	{"Contact", "contact"},
}

// ResolveReference returns the entity a field points at, or "" when nothing
// matches. hint is the referenceEntityType reported by the metadata, if any;
// resource is the entity owning the field and answers hierarchical names
// like "parent" or "parentID".
func ResolveReference(resource, fieldID, hint string) string {
	if hint != "" {
		return lowerFirst(hint)
	}
	if fieldID == "" {
		return ""
	}
	if e, ok := directReferences[strings.ToLower(fieldID)]; ok {
		return e
	}

	base := stripIDSuffix(fieldID)
	if base == "" {
		return ""
	}
	if e, ok := referenceAliases[strings.ToLower(base)]; ok {
		return e
	}

	if strings.EqualFold(base, "parent") {
		return lowerFirst(resource)
	}
	if rest, ok := strings.CutPrefix(base, "parent"); ok && rest != "" && unicode.IsUpper(rune(rest[0])) {
		if e := ResolveReference(resource, rest+"ID", ""); e != "" {
			return e
		}
		return lowerFirst(resource)
	}

	for _, rs := range roleSuffixes {
		if len(base) > len(rs.suffix) && strings.HasSuffix(base, rs.suffix) {
			return rs.entity
		}
	}

	if base == fieldID {
		// No ID suffix and no dictionary hit.
		return ""
	}
	return lowerFirst(base)
}

func stripIDSuffix(id string) string {
	switch {
	case strings.HasSuffix(id, "ID"), strings.HasSuffix(id, "Id"):
		return id[:len(id)-2]
	default:
		return id
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
