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

package agenterr

import (
	"fmt"

	"github.com/msoukhomlinov/autotask-mcp/pkg/naming"
)

// NextAction returns the fixed recovery instruction for kind, naming the
// companion tools of the call's resource.
func NextAction(kind Kind, call Call) string {
	describe := naming.ToolName(call.Namespace, call.Resource, naming.HelperDescribeFields)
	picklist := naming.ToolName(call.Namespace, call.Resource, naming.HelperListPicklistValues)
	search := naming.ToolName(call.Namespace, call.Resource, "getMany")

	switch kind {
	case InvalidFields:
		return fmt.Sprintf("Call %s with mode \"read\" to list valid field names, then retry with corrected 'fields'.", describe)
	case InvalidWriteFields:
		return fmt.Sprintf("Call %s with mode \"write\" to list writable fields, then remove or rename the unknown fields.", describe)
	case MissingRequiredFields:
		return fmt.Sprintf("Call %s with mode \"write\" to see required fields, then supply every missing field.", describe)
	case MissingEntityID:
		return fmt.Sprintf("Supply a numeric 'id'. If you do not know it, find the record with %s first.", search)
	case InvalidFilterConstraint:
		return fmt.Sprintf("Use a filter_field listed by %s (mode \"read\"), a supported filter_op and a non-empty filter_value.", describe)
	case ConcurrencyConflict:
		return "The record is locked or being modified. Wait, then retry the same call with exponential backoff. Do not run parallel writes against the same record."
	case PermissionDenied:
		return "The API user lacks permission for this operation. Do not retry; tell the user which permission is missing or use a read-only alternative."
	case InvalidPicklistValue:
		return fmt.Sprintf("Call %s with the fieldId to get the allowed values, then retry using a value id.", picklist)
	case EntityNotFound:
		return fmt.Sprintf("Verify the id. Use %s with a filter to locate the record.", search)
	default:
		return fmt.Sprintf("Check the parameters against %s and retry. If the error persists, report the message to the user.", describe)
	}
}
