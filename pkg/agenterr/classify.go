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
	"errors"
	"net/http"
	"strings"
)

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// keywordRules are checked in order against the lower-cased message.
var keywordRules = []struct {
	kind     Kind
	keywords []string
}{
	{ConcurrencyConflict, []string{"lock", "concurrent", "deadlock"}},
	{PermissionDenied, []string{"forbidden", "unauthorized", "permission", "access denied"}},
	{InvalidPicklistValue, []string{"picklist", "invalid value"}},
	{MissingRequiredFields, []string{"required", "missing"}},
	{EntityNotFound, []string{"not found", "does not exist"}},
}

// Classify turns any failure into a StructuredError for call.
//
// Typed errors win: a *StructuredError passes through unchanged (its
// operation filled in when empty), and an error carrying a decisive HTTP
// status maps directly. Everything else falls back to keyword matching on
// the message.
func Classify(err error, call Call) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		out := *se
		if out.Operation == "" {
			out.Operation = call.Name()
		}
		if out.NextAction == "" {
			out.NextAction = NextAction(out.Kind, call)
		}
		return &out
	}

	msg := err.Error()
	var sc StatusCoder
	if errors.As(err, &sc) {
		if kind, ok := kindForStatus(sc.StatusCode()); ok {
			return New(kind, call, msg)
		}
	}
	return New(ClassifyMessage(msg), call, msg)
}

// ClassifyMessage applies the keyword rules to an opaque message.
func ClassifyMessage(msg string) Kind {
	lower := strings.ToLower(msg)
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.kind
			}
		}
	}
	return APIError
}

func kindForStatus(status int) (Kind, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return PermissionDenied, true
	case http.StatusNotFound:
		return EntityNotFound, true
	case http.StatusConflict, http.StatusLocked:
		return ConcurrencyConflict, true
	default:
		return "", false
	}
}
