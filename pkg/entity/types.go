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

// Package entity models the field metadata of Autotask resources.
//
// Raw metadata arrives in two lists per resource (standard fields and
// user-defined fields) from either the REST API or a YAML fixture directory.
// Normalize merges both into a uniform []FieldDescriptor per (resource, mode),
// resolving picklists, cross-entity references and static field dependencies.
//
// Everything downstream (schema synthesis, validation, the agent tools) works
// on FieldDescriptor only and never sees the raw shapes.
package entity

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InlinePicklistThreshold is the number of active picklist values below which
// the values are carried inline on the descriptor. Larger picklists must be
// fetched through a PicklistProvider.
const InlinePicklistThreshold = 50

// FieldType is the normalized type of a field.
// Values outside the known set are opaque extension types.
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeDateTime FieldType = "datetime"
	TypeArray    FieldType = "array"
	TypeObject   FieldType = "object"
	TypeEmail    FieldType = "email"
	TypeURL      FieldType = "url"
	TypePhone    FieldType = "phone"
)

// Known reports whether t is one of the built-in field types.
func (t FieldType) Known() bool {
	switch t {
	case TypeString, TypeNumber, TypeBoolean, TypeDateTime, TypeArray,
		TypeObject, TypeEmail, TypeURL, TypePhone:
		return true
	}
	return false
}

// Mode selects which view of a resource's fields is wanted.
type Mode string

const (
	ModeRead  Mode = "read"
	ModeWrite Mode = "write"
)

// ParseMode parses a mode name. An empty string means read.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "read":
		return ModeRead, nil
	case "write":
		return ModeWrite, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be read or write", s)
	}
}

// PicklistValue is one legal value of a picklist field.
type PicklistValue struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// FieldDescriptor is the normalized description of one field of a resource
// in one mode.
type FieldDescriptor struct {
	ID               string          `json:"id"`
	Label            string          `json:"label,omitempty"`
	Type             FieldType       `json:"type"`
	Required         bool            `json:"required"`
	IsUserDefined    bool            `json:"isUserDefined"`
	IsPicklist       bool            `json:"isPicklist"`
	AllowedValues    []PicklistValue `json:"allowedValues,omitempty"`
	IsReference      bool            `json:"isReference"`
	ReferencedEntity string          `json:"referencedEntity,omitempty"`
	Dependencies     []string        `json:"dependencies,omitempty"`
}

// DisplayName returns the label when metadata supplied one, otherwise a
// humanized form of the field id ("assignedResourceID" becomes
// "Assigned Resource ID").
func (f FieldDescriptor) DisplayName() string {
	if f.Label != "" {
		return f.Label
	}
	return Humanize(f.ID)
}

// Humanize splits a camelCase identifier into title-cased words. Spaces and
// underscores also separate words, so user-defined field names such as
// "customer reference" come out as "Customer Reference". Acronyms keep their
// case.
func Humanize(id string) string {
	words := splitWords(id)
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.English, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// splitWords breaks id at camelCase boundaries, spaces and underscores.
func splitWords(id string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			words = append(words, b.String())
			b.Reset()
		}
	}
	runes := []rune(id)
	for i, r := range runes {
		if r == ' ' || r == '_' {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		b.WriteRune(r)
	}
	flush()
	return words
}

// Provider supplies normalized field descriptors for a resource.
type Provider interface {
	GetFields(ctx context.Context, resource string, mode Mode) ([]FieldDescriptor, error)
}

// PicklistProvider supplies the full active value list of a picklist field,
// including picklists too large to inline on the descriptor.
type PicklistProvider interface {
	GetPicklistValues(ctx context.Context, resource, fieldID string) ([]PicklistValue, error)
}

// Find returns the descriptor whose id matches name case-insensitively.
func Find(fields []FieldDescriptor, name string) (FieldDescriptor, bool) {
	for _, f := range fields {
		if strings.EqualFold(f.ID, name) {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}
